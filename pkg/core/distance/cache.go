package distance

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds a single call to the underlying source
const DefaultLookupTimeout = 5 * time.Second

// Cache memoizes distance lookups on the unordered pair of location codes.
// Failed lookups are cached as Unknown, matching the source's pure-function contract.
// A Cache is safe for concurrent use.
type Cache struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger

	entries *lru.Cache[string, float64]
	group   singleflight.Group
	lookups atomic.Int64
}

// CacheOptions configures a Cache
type CacheOptions struct {
	// Timeout bounds each source lookup. Zero uses DefaultLookupTimeout.
	Timeout time.Duration
	// MaxSize caps the number of cached pairs. Zero means unbounded.
	MaxSize int
}

// NewCache wraps a source with memoization
func NewCache(source Source, opts CacheOptions, logger *zap.Logger) *Cache {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.MaxSize
	if size <= 0 {
		size = math.MaxInt
	}
	// lru.New only fails for a non-positive size
	entries, _ := lru.New[string, float64](size)

	return &Cache{
		source:  source,
		timeout: opts.Timeout,
		logger:  logger,
		entries: entries,
	}
}

// Distance returns the miles between two location codes, or Unknown when the source fails
func (c *Cache) Distance(ctx context.Context, locationA, locationB string) float64 {
	a, b := normalizeCode(locationA), normalizeCode(locationB)
	if a == "" || b == "" {
		return Unknown
	}

	key := pairKey(a, b)
	if miles, ok := c.entries.Get(key); ok {
		return miles
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if miles, ok := c.entries.Get(key); ok {
			return miles, nil
		}
		miles, cacheable := c.lookup(ctx, a, b)
		if cacheable {
			c.entries.Add(key, miles)
		}
		return miles, nil
	})

	return v.(float64)
}

// Lookups returns how many times the underlying source has been called
func (c *Cache) Lookups() int {
	return int(c.lookups.Load())
}

// Len returns the number of cached pairs
func (c *Cache) Len() int {
	return c.entries.Len()
}

// lookup calls the source with a timeout and maps every failure to Unknown.
// The second return is false when the caller's context ended, so the result is not cached.
func (c *Cache) lookup(ctx context.Context, a, b string) (float64, bool) {
	c.lookups.Add(1)

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	miles, err := c.source.Lookup(lookupCtx, a, b)
	if err != nil {
		if ctx.Err() != nil {
			return Unknown, false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Debug("Distance lookup timed out",
				zap.String("from", a),
				zap.String("to", b),
				zap.Duration("timeout", c.timeout))
		} else {
			c.logger.Debug("Distance lookup failed",
				zap.String("from", a),
				zap.String("to", b),
				zap.Error(err))
		}
		return Unknown, true
	}

	if math.IsNaN(miles) || miles < 0 {
		c.logger.Debug("Distance source returned no distance",
			zap.String("from", a),
			zap.String("to", b),
			zap.Float64("value", miles))
		return Unknown, true
	}

	return miles, true
}
