package config

// SeedConfig controls sample-data initialization on an empty catalog.
type SeedConfig struct {
	Enabled bool `koanf:"enabled"`
}

func (c *SeedConfig) Validate() error {
	return nil
}
