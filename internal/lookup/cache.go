// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"sync"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// Cache memoizes enriched paper details per title for the lifetime of one
// run. It is safe for concurrent use by the digest workers. Two workers
// racing on the same uncached title may both query the sources; the second
// Put simply overwrites the first, which is harmless because duplicate
// queries for one title return stable results. There is no eviction: the
// process terminates at the end of the run.
//
// Callers must not hold any reference into the cache across a network call;
// the resolver reads, releases, queries, then populates.
type Cache struct {
	mu      sync.RWMutex
	records map[string]types.PaperRecord
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[string]types.PaperRecord)}
}

// Get returns the memoized record for title, if present. The record's
// Reasons and Date fields are per-mention and are never stored here.
func (c *Cache) Get(title string) (types.PaperRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[title]
	return rec, ok
}

// Put stores the record for title, overwriting any concurrent earlier write.
func (c *Cache) Put(title string, rec types.PaperRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.Reasons = nil
	rec.Date = ""
	c.records[title] = rec
}

// Len reports the number of distinct titles cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
