package distance

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const earthRadiusMiles = 3958.8

// Centroid is the geographic centre of a location code
type Centroid struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// TableSource measures great-circle miles between location codes using a centroid table
type TableSource struct {
	centroids map[string]Centroid
}

// NewTableSource creates a TableSource from an in-memory centroid table
func NewTableSource(centroids map[string]Centroid) *TableSource {
	normalized := make(map[string]Centroid, len(centroids))
	for code, c := range centroids {
		normalized[normalizeCode(code)] = c
	}
	return &TableSource{centroids: normalized}
}

// LoadTableSource reads a YAML centroid table of the form:
//
//	"98101": {lat: 47.6114, lon: -122.3305}
func LoadTableSource(path string) (*TableSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read centroid table: %w", err)
	}

	var centroids map[string]Centroid
	if err := yaml.Unmarshal(data, &centroids); err != nil {
		return nil, fmt.Errorf("failed to parse centroid table: %w", err)
	}

	for code, c := range centroids {
		if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return nil, fmt.Errorf("invalid centroid for %q: lat=%v lon=%v", code, c.Lat, c.Lon)
		}
	}

	return NewTableSource(centroids), nil
}

// Lookup returns the haversine distance between the two centroids
func (t *TableSource) Lookup(ctx context.Context, locationA, locationB string) (float64, error) {
	a, ok := t.centroids[normalizeCode(locationA)]
	if !ok {
		return -1, fmt.Errorf("unknown location code %q", locationA)
	}
	b, ok := t.centroids[normalizeCode(locationB)]
	if !ok {
		return -1, fmt.Errorf("unknown location code %q", locationB)
	}
	return haversineMiles(a, b), nil
}

func haversineMiles(a, b Centroid) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}
