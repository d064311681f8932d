package blacklist

import (
	"sync"
	"time"

	"lol-blacklist/internal/model"
)

// matchCache is a TTL cache for match summaries keyed by match id.
type matchCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]matchCacheEntry
}

type matchCacheEntry struct {
	match model.MatchSummary
	until time.Time
}

func newMatchCache(ttl time.Duration, now func() time.Time) *matchCache {
	return &matchCache{ttl: ttl, now: now, entries: map[string]matchCacheEntry{}}
}

func (c *matchCache) get(matchID string) (model.MatchSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[matchID]
	if !ok || !c.now().Before(entry.until) {
		return model.MatchSummary{}, false
	}
	return entry.match, true
}

func (c *matchCache) put(match model.MatchSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, entry := range c.entries {
		if !now.Before(entry.until) {
			delete(c.entries, id)
		}
	}
	c.entries[match.ID] = matchCacheEntry{match: match, until: now.Add(c.ttl)}
}

func (c *matchCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]matchCacheEntry{}
}
