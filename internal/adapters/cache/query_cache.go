package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// QueryCache keeps encoded query results in process memory.
// Tags group keys so a whole family of results can be dropped at once.
type QueryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu       sync.Mutex
	tags     map[string]map[string]struct{}
	versions map[string]uint64
}

func NewQueryCache(maxItems int64, ttl time.Duration) (*QueryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create query cache failed: %w", err)
	}
	return &QueryCache{
		cache:    c,
		ttl:      ttl,
		tags:     make(map[string]map[string]struct{}),
		versions: make(map[string]uint64),
	}, nil
}

func (c *QueryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *QueryCache) Set(_ context.Context, key string, value []byte, tags ...string) {
	if len(tags) > 0 {
		c.mu.Lock()
		for _, tag := range tags {
			keys, ok := c.tags[tag]
			if !ok {
				keys = make(map[string]struct{})
				c.tags[tag] = keys
			}
			keys[key] = struct{}{}
		}
		c.mu.Unlock()
	}
	c.cache.SetWithTTL(key, value, 1, c.ttl)
}

// Invalidate drops every given key and every key registered under a tag of that name,
// and moves each name to a new generation.
func (c *QueryCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		c.versions[k]++
		if tagged, ok := c.tags[k]; ok {
			for member := range tagged {
				c.cache.Del(member)
			}
			delete(c.tags, k)
		}
		c.cache.Del(k)
	}
	return nil
}

func (c *QueryCache) Version(_ context.Context, name string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[name], nil
}

func (c *QueryCache) Close() { c.cache.Close() }
