// Package cache keeps normalized season tables in memory.
//
// Entries are keyed by season and expire after a TTL: the in-progress season
// changes as matches are played, so it gets a shorter TTL than finished
// seasons. Failed loads are never stored, so the next request retries the
// whole fetch and normalize sequence. Concurrent requests for the same season
// share a single load.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/stats"
)

const (
	DefaultCurrentTTL    = 1 * time.Hour
	DefaultHistoricalTTL = 24 * time.Hour

	// DefaultSweepInterval is how often Sweep drops expired entries
	DefaultSweepInterval = 10 * time.Minute
)

// Loader produces the table for a season on a cache miss
type Loader func(ctx context.Context, key season.Key) (*stats.Table, error)

type entry struct {
	table    *stats.Table
	cachedAt time.Time
}

// Cache maps season keys to tables
type Cache struct {
	mu      sync.Mutex
	entries map[season.Key]entry
	group   singleflight.Group
	load    Loader
	now     func() time.Time

	// CurrentTTL applies to season.Current, HistoricalTTL to every other key.
	// A non-positive TTL keeps entries for the life of the process.
	CurrentTTL    time.Duration
	HistoricalTTL time.Duration

	// LoadTimeout bounds a shared load. Zero means no bound.
	LoadTimeout time.Duration
}

// New creates a cache around load with the default TTLs
func New(load Loader) *Cache {
	return &Cache{
		entries:       make(map[season.Key]entry),
		load:          load,
		now:           time.Now,
		CurrentTTL:    DefaultCurrentTTL,
		HistoricalTTL: DefaultHistoricalTTL,
	}
}

func (c *Cache) ttl(key season.Key) time.Duration {
	if key.IsCurrent() {
		return c.CurrentTTL
	}
	return c.HistoricalTTL
}

func (c *Cache) expired(key season.Key, e entry) bool {
	ttl := c.ttl(key)
	return ttl > 0 && c.now().Sub(e.cachedAt) > ttl
}

// Get returns the stored table for key if present and not expired
func (c *Cache) Get(key season.Key) (*stats.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(key, e) {
		delete(c.entries, key)
		return nil, false
	}
	return e.table, true
}

// Set stores table for key
func (c *Cache) Set(key season.Key, table *stats.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{table: table, cachedAt: c.now()}
}

// GetOrLoad returns the cached table for key, loading and storing it on a miss.
// On failure it returns the error and stores nothing.
//
// When several callers miss on the same key at once, one load runs and all of
// them receive its result. The load is detached from the callers' cancellation
// and bounded by LoadTimeout instead; a caller whose ctx ends first stops
// waiting with ctx.Err() while the load carries on for the others.
func (c *Cache) GetOrLoad(ctx context.Context, key season.Key) (*stats.Table, error) {
	if table, ok := c.Get(key); ok {
		logger.IncrCounter("cache.hit")
		logger.Debug("cache hit", logger.Fields{"season": key.String()})
		return table, nil
	}

	ch := c.group.DoChan(string(key), func() (interface{}, error) {
		// A concurrent flight may have stored the table just before this one started.
		if table, ok := c.Get(key); ok {
			return table, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if c.LoadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.LoadTimeout)
			defer cancel()
		}

		logger.IncrCounter("cache.miss")
		table, err := c.load(loadCtx, key)
		if err != nil {
			logger.IncrCounter("cache.load_error")
			return nil, err
		}

		c.Set(key, table)
		logger.SetGauge("cache.size", float64(c.Size()))
		return table, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logger.Error("loading season failed", logger.Fields{
				"season": key.String(),
				"shared": res.Shared,
			}, res.Err)
			return nil, res.Err
		}
		return res.Val.(*stats.Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CleanExpired removes expired entries and returns how many were removed
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(key, e) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep calls CleanExpired every interval until ctx is done
func (c *Cache) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.CleanExpired(); removed > 0 {
				logger.Debug("expired seasons removed", logger.Fields{"removed": removed})
			}
			logger.SetGauge("cache.size", float64(c.Size()))
		}
	}
}

// Size returns the number of stored entries, expired or not
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
