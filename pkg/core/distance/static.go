package distance

import (
	"context"
	"fmt"
)

// StaticSource serves distances from a fixed table of pairs.
// Pairs are direction-insensitive; an identical pair of codes is zero miles.
type StaticSource struct {
	miles map[string]float64
}

// NewStaticSource creates an empty StaticSource
func NewStaticSource() *StaticSource {
	return &StaticSource{miles: make(map[string]float64)}
}

// Set records the distance between two codes and returns the source for chaining
func (s *StaticSource) Set(locationA, locationB string, miles float64) *StaticSource {
	s.miles[pairKey(normalizeCode(locationA), normalizeCode(locationB))] = miles
	return s
}

// Lookup returns the recorded distance
func (s *StaticSource) Lookup(ctx context.Context, locationA, locationB string) (float64, error) {
	a, b := normalizeCode(locationA), normalizeCode(locationB)
	if a == b {
		return 0, nil
	}
	miles, ok := s.miles[pairKey(a, b)]
	if !ok {
		return -1, fmt.Errorf("no distance recorded for %s-%s", a, b)
	}
	return miles, nil
}
