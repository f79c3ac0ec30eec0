package service

import "strings"

// NormalizePartNumber canonicalizes a part number for storage and comparison:
// surrounding whitespace is stripped and the result is upper-cased.
// The folding is locale-independent, so duplicate detection stays
// deterministic. Idempotent.
func NormalizePartNumber(partNumber string) string {
	return strings.ToUpper(strings.TrimSpace(partNumber))
}

// NormalizePartName canonicalizes a part name: trimmed and lower-cased.
func NormalizePartName(partName string) string {
	return strings.ToLower(strings.TrimSpace(partName))
}

// NormalizeCategory trims a category, preserving its case.
func NormalizeCategory(category string) string {
	return strings.TrimSpace(category)
}
