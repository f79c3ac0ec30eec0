package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phasezero/catalog/internal/store"
	"github.com/shopspring/decimal"
)

// sampleProducts are the parts loaded into an empty catalog when seeding is
// enabled. Textual fields are already in canonical form.
var sampleProducts = []store.Product{
	{
		PartNumber:  "PN-1001",
		PartName:    "hydraulic filter",
		Category:    "Filters",
		Price:       decimal.RequireFromString("99.99"),
		Stock:       100,
		Brand:       "Bosch",
		Description: "High-quality hydraulic filter for industrial use",
	},
	{
		PartNumber:  "PN-1002",
		PartName:    "engine oil",
		Category:    "Lubricants",
		Price:       decimal.RequireFromString("29.99"),
		Stock:       200,
		Brand:       "Mobil",
		Description: "Synthetic engine oil 5W-30",
	},
	{
		PartNumber:  "PN-1003",
		PartName:    "brake pads",
		Category:    "Brakes",
		Price:       decimal.RequireFromString("79.99"),
		Stock:       50,
		Brand:       "Brembo",
		Description: "Ceramic brake pads for passenger cars",
	},
	{
		PartNumber:  "PN-1004",
		PartName:    "air filter",
		Category:    "Filters",
		Price:       decimal.RequireFromString("24.99"),
		Stock:       150,
		Brand:       "MANN",
		Description: "Premium air filter for improved engine performance",
	},
	{
		PartNumber:  "PN-1005",
		PartName:    "spark plug",
		Category:    "Ignition",
		Price:       decimal.RequireFromString("12.99"),
		Stock:       300,
		Brand:       "NGK",
		Description: "Iridium spark plug for better fuel efficiency",
	},
}

// SeedSampleData loads sample parts into the store if the catalog is empty.
// A non-empty catalog is left untouched.
func SeedSampleData(ctx context.Context, s store.ProductStore, logger *slog.Logger) error {
	_, total, err := s.FindAll(ctx, store.PageSpec{Size: 1})
	if err != nil {
		return fmt.Errorf("failed to check catalog size: %w", err)
	}
	if total > 0 {
		logger.Debug("Catalog is not empty, skipping sample data", "count", total)
		return nil
	}

	logger.Info("Initializing sample product data...")
	for i := range sampleProducts {
		if _, err := s.Create(ctx, &sampleProducts[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sampleProducts[i].PartNumber, err)
		}
	}
	logger.Info("Sample data initialized", "count", len(sampleProducts))
	return nil
}
