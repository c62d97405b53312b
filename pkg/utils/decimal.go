package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// ParseFloatSafe parses a numeric string as it arrives from the provider
// or a DECIMAL column. Empty or malformed input falls back to zero so
// that snapshot fields stay finite numbers past the resolver boundary.
func ParseFloatSafe(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return SanitizeFloat(f)
}

// SanitizeFloat coerces NaN and infinities to zero.
func SanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
