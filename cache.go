package frames

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheCapacity is the number of transforms cached by default.
	DefaultCacheCapacity = 4096
)

type cacheKey struct {
	from, to int
	sec      int64
	nsec     int
	eopGen   uint64
}

// transformCache is a bounded LRU of composed transforms. Concurrent misses on
// a key share one computation.
type transformCache struct {
	entries    *lru.Cache[cacheKey, Transform]
	group      singleflight.Group
	resolution time.Duration
	metrics    *metrics
}

// newTransformCache returns nil when capacity is not positive, which disables caching.
func newTransformCache(capacity int, resolution time.Duration, mtr *metrics) (*transformCache, error) {
	if capacity <= 0 {
		return nil, nil
	}
	c := &transformCache{resolution: resolution, metrics: mtr}
	entries, err := lru.NewWithEvict[cacheKey, Transform](capacity, func(cacheKey, Transform) {
		mtr.evictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("transform cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// bucket returns the instant transforms are evaluated at for a query at t.
func bucket(t time.Time, resolution time.Duration) time.Time {
	t = t.UTC()
	if resolution <= 0 {
		return t
	}
	return t.Truncate(resolution)
}

func (c *transformCache) get(key cacheKey, compute func() (Transform, error)) (Transform, error) {
	if tr, ok := c.entries.Get(key); ok {
		c.metrics.hits.Inc()
		return tr, nil
	}
	v, err, _ := c.group.Do(fmt.Sprintf("%d/%d/%d/%d/%d", key.from, key.to, key.sec, key.nsec, key.eopGen), func() (interface{}, error) {
		if tr, ok := c.entries.Get(key); ok {
			c.metrics.hits.Inc()
			return tr, nil
		}
		c.metrics.misses.Inc()
		tr, err := compute()
		if err != nil {
			return Transform{}, err
		}
		c.entries.Add(key, tr)
		return tr, nil
	})
	if err != nil {
		return Transform{}, err
	}
	return v.(Transform), nil
}

func (c *transformCache) purge() {
	c.entries.Purge()
}

func (c *transformCache) len() int {
	return c.entries.Len()
}
