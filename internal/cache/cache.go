// Package cache holds the process-wide search result cache. Entries are keyed
// on the normalized query shape and carry the tag set seen at population time;
// a lookup only hits when the key matches, the entry is inside its TTL and the
// tag snapshot equals the current query's tags.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gifexplorer/gifsearch/internal/domain"
)

type entry struct {
	ids       []domain.ContentID
	createdAt time.Time
	tags      []string
}

// ResultCache is a bounded TTL cache shared by every request worker.
// All access goes through the mutex; the map is never reachable unguarded.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	hitTotal   *prometheus.CounterVec
}

// New creates a result cache with the given TTL and entry cap.
func New(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithMetrics attaches a counter vec with label "result" ("hit"/"miss").
func (c *ResultCache) WithMetrics(hitTotal *prometheus.CounterVec) *ResultCache {
	c.hitTotal = hitTotal
	return c
}

// WithClock overrides the time source. Test hook.
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.now = now
	return c
}

// Get returns the cached ids for key if the entry is fresh and its tag
// snapshot equals currentTags. Absence, staleness and tag drift all count
// as a miss; the entry is left in place for the following Put to overwrite.
func (c *ResultCache) Get(key string, currentTags []string) ([]domain.ContentID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.observe("miss")
		return nil, false
	}
	if c.now().Sub(e.createdAt) > c.ttl || !tagsEqual(e.tags, currentTags) {
		c.observe("miss")
		return nil, false
	}

	c.observe("hit")
	ids := make([]domain.ContentID, len(e.ids))
	copy(ids, e.ids)
	return ids, true
}

// Put inserts or overwrites the entry for key with the current time and the
// given tag snapshot. When the entry count exceeds the cap, entries are sorted
// by creation time and only the newest half of the cap survives.
func (c *ResultCache) Put(key string, ids []domain.ContentID, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]domain.ContentID, len(ids))
	copy(stored, ids)
	snapshot := make([]string, len(tags))
	copy(snapshot, tags)

	c.entries[key] = entry{ids: stored, createdAt: c.now(), tags: snapshot}

	if len(c.entries) > c.maxEntries {
		c.evictLocked()
	}
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops the coldest half: everything but the newest
// maxEntries/2 entries. Caller must hold the mutex.
func (c *ResultCache) evictLocked() {
	type keyed struct {
		key       string
		createdAt time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{key: k, createdAt: e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.After(all[j].createdAt)
	})

	keep := c.maxEntries / 2
	for _, victim := range all[keep:] {
		delete(c.entries, victim.key)
	}
}

func (c *ResultCache) observe(result string) {
	if c.hitTotal != nil {
		c.hitTotal.WithLabelValues(result).Inc()
	}
}

// tagsEqual compares two normalized (sorted, deduplicated) tag slices.
func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
