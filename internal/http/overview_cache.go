package http

import (
	"log/slog"
	"sync"
	"time"

	"brokemate/internal/cache"
	"brokemate/internal/core"
	applog "brokemate/internal/log"
)

// OverviewCache memoizes month overviews per user. Every saved change bumps
// the user's generation, and an overview computed under an older generation
// is never stored, so a read racing a write cannot cache the old snapshot.
type OverviewCache struct {
	mu      sync.Mutex
	entries *cache.LRUCache[core.MonthOverview]
	gens    map[string]uint64
}

func NewOverviewCache(size int, ttl time.Duration) *OverviewCache {
	return &OverviewCache{
		entries: cache.NewLRUCache[core.MonthOverview](size, ttl),
		gens:    make(map[string]uint64),
	}
}

// Generation returns the user's current generation. Read it before
// computing an overview and hand it to Store.
func (c *OverviewCache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

func (c *OverviewCache) Get(userID, month string) (core.MonthOverview, bool) {
	return c.entries.Get(overviewKey(userID, month))
}

// Store caches ov unless the user changed since gen was read. It reports
// whether the overview was kept.
func (c *OverviewCache) Store(userID, month string, gen uint64, ov core.MonthOverview) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return false
	}
	c.entries.Set(overviewKey(userID, month), ov)
	return true
}

// Invalidate drops the user's overviews and starts a new generation.
func (c *OverviewCache) Invalidate(userID string) {
	c.mu.Lock()
	c.gens[userID]++
	n := c.entries.DeletePrefix(userID + "|")
	c.mu.Unlock()
	if n > 0 {
		slog.Debug("Invalidated cached overviews", applog.FieldUserID, userID, "entries", n)
	}
}

func (c *OverviewCache) CleanExpired() int { return c.entries.CleanExpired() }

func (c *OverviewCache) Size() int { return c.entries.Size() }

var _ cache.Cleaner = (*OverviewCache)(nil)
