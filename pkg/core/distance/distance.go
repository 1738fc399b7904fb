package distance

import (
	"context"
	"math"
	"strings"
)

// Unknown is the distance reported when a pair of location codes cannot be measured.
// It compares greater than every finite distance so it always sorts last.
var Unknown = math.Inf(1)

// IsUnknown reports whether d is the Unknown sentinel
func IsUnknown(d float64) bool {
	return math.IsInf(d, 1)
}

// Source looks up the travel distance in miles between two location codes.
// A negative result means the source could not measure the pair.
type Source interface {
	Lookup(ctx context.Context, locationA, locationB string) (float64, error)
}

// Distancer returns a distance in miles or Unknown, never an error
type Distancer interface {
	Distance(ctx context.Context, locationA, locationB string) float64
}

// normalizeCode trims whitespace so " 98101" and "98101" share a cache entry
func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// pairKey builds a direction-insensitive key for a pair of location codes
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
