package application

import (
	"sync"
	"time"
)

// summaryCache stores recently computed report summaries to avoid repeated
// full-window reductions for identical queries while registrations remain
// unchanged.
type summaryCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]summaryCacheEntry
}

type summaryCacheEntry struct {
	summary   ReportSummary
	expiresAt time.Time
}

func newSummaryCache(ttl time.Duration, maxEntries int, now func() time.Time) *summaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &summaryCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]summaryCacheEntry),
	}
}

func (c *summaryCache) Get(key string) (ReportSummary, bool) {
	if c == nil {
		return ReportSummary{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return ReportSummary{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return ReportSummary{}, false
	}
	return entry.summary, true
}

func (c *summaryCache) Store(key string, summary ReportSummary) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = summaryCacheEntry{summary: summary, expiresAt: expiry}
}

func (c *summaryCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]summaryCacheEntry)
	c.mu.Unlock()
}

func (c *summaryCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *summaryCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
