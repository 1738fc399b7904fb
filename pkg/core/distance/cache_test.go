package distance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts lookups and delegates to fn
type countingSource struct {
	calls atomic.Int32
	fn    func(ctx context.Context, a, b string) (float64, error)
}

func (s *countingSource) Lookup(ctx context.Context, a, b string) (float64, error) {
	s.calls.Add(1)
	return s.fn(ctx, a, b)
}

func TestCache_MemoizesUnorderedPair(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 4.2, nil
	}}
	cache := NewCache(source, CacheOptions{}, nil)
	ctx := context.Background()

	assert.Equal(t, 4.2, cache.Distance(ctx, "98101", "98115"))
	assert.Equal(t, 4.2, cache.Distance(ctx, "98115", "98101"))
	assert.Equal(t, 4.2, cache.Distance(ctx, " 98101 ", "98115"))

	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, 1, cache.Lookups())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ErrorsMapToUnknown(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 0, errors.New("helper crashed")
	}}
	cache := NewCache(source, CacheOptions{}, nil)

	d := cache.Distance(context.Background(), "98101", "98115")
	assert.True(t, IsUnknown(d))

	// Failures are memoized too
	cache.Distance(context.Background(), "98101", "98115")
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCache_NegativeAndNaNMapToUnknown(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"negative one", -1},
		{"negative fraction", -0.5},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
				return tt.value, nil
			}}
			cache := NewCache(source, CacheOptions{}, nil)
			assert.True(t, IsUnknown(cache.Distance(context.Background(), "a", "b")))
		})
	}
}

func TestCache_EmptyCodeIsUnknownWithoutLookup(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 1, nil
	}}
	cache := NewCache(source, CacheOptions{}, nil)

	assert.True(t, IsUnknown(cache.Distance(context.Background(), "", "98101")))
	assert.True(t, IsUnknown(cache.Distance(context.Background(), "98101", "  ")))
	assert.Equal(t, int32(0), source.calls.Load())
}

func TestCache_TimeoutMapsToUnknown(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	cache := NewCache(source, CacheOptions{Timeout: 10 * time.Millisecond}, nil)

	start := time.Now()
	d := cache.Distance(context.Background(), "98101", "98115")
	assert.True(t, IsUnknown(d))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCache_CancelledCallerIsNotCached(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 0, ctx.Err()
	}}
	cache := NewCache(source, CacheOptions{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, IsUnknown(cache.Distance(ctx, "98101", "98115")))
	assert.Equal(t, 0, cache.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 1, nil
	}}
	cache := NewCache(source, CacheOptions{MaxSize: 2}, nil)
	ctx := context.Background()

	cache.Distance(ctx, "a", "b")
	cache.Distance(ctx, "a", "c")
	cache.Distance(ctx, "a", "b") // refresh a-b
	cache.Distance(ctx, "a", "d") // evicts a-c

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, int32(3), source.calls.Load())

	cache.Distance(ctx, "a", "b")
	assert.Equal(t, int32(3), source.calls.Load())

	cache.Distance(ctx, "a", "c")
	assert.Equal(t, int32(4), source.calls.Load())
}

func TestCache_ConcurrentLookupsShareOneCall(t *testing.T) {
	release := make(chan struct{})
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		<-release
		return 7.5, nil
	}}
	cache := NewCache(source, CacheOptions{}, nil)

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Distance(context.Background(), "98101", "98052")
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 7.5, r)
	}
	assert.LessOrEqual(t, source.calls.Load(), int32(2))
}

func TestStaticSource_Lookup(t *testing.T) {
	source := NewStaticSource().Set("98101", "98115", 5)

	d, err := source.Lookup(context.Background(), "98115", "98101")
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	d, err = source.Lookup(context.Background(), "98101", "98101")
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	_, err = source.Lookup(context.Background(), "98101", "00000")
	assert.Error(t, err)
}

func TestTableSource_Lookup(t *testing.T) {
	source := NewTableSource(map[string]Centroid{
		"98101": {Lat: 47.6114, Lon: -122.3305},
		"98052": {Lat: 47.6694, Lon: -122.1239},
	})

	d, err := source.Lookup(context.Background(), "98101", "98052")
	require.NoError(t, err)
	// Downtown Seattle to Redmond is roughly 10 miles as the crow flies
	assert.InDelta(t, 10.0, d, 1.5)

	_, err = source.Lookup(context.Background(), "98101", "99999")
	assert.Error(t, err)
}

func TestLoadTableSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zips.yaml")
	content := `"98101": {lat: 47.6114, lon: -122.3305}
"98115": {lat: 47.6849, lon: -122.2968}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	source, err := LoadTableSource(path)
	require.NoError(t, err)

	d, err := source.Lookup(context.Background(), "98101", "98115")
	require.NoError(t, err)
	assert.Greater(t, d, 4.0)
	assert.Less(t, d, 7.0)
}

func TestLoadTableSource_InvalidCentroid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zips.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`"98101": {lat: 147.0, lon: 0}`), 0644))

	_, err := LoadTableSource(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid centroid")
}

func TestParseMiles(t *testing.T) {
	miles, err := parseMiles("12.34\n")
	require.NoError(t, err)
	assert.Equal(t, 12.34, miles)

	miles, err = parseMiles("-1")
	require.NoError(t, err)
	assert.Equal(t, -1.0, miles)

	_, err = parseMiles("")
	assert.Error(t, err)

	_, err = parseMiles("null")
	assert.Error(t, err)
}

func TestCache_ZeroMaxSizeIsUnbounded(t *testing.T) {
	source := &countingSource{fn: func(ctx context.Context, a, b string) (float64, error) {
		return 1, nil
	}}
	cache := NewCache(source, CacheOptions{}, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		cache.Distance(ctx, "hub", fmt.Sprintf("z%02d", i))
	}
	assert.Equal(t, 50, cache.Len())

	cache.Distance(ctx, "z00", "hub")
	assert.Equal(t, int32(50), source.calls.Load())
}
