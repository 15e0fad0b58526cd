package fs

import (
	"os"
	"sync"
	"time"

	"github.com/aretw0/knowhub/pkg/adapters/internal/docset"
	"github.com/aretw0/knowhub/pkg/core"
)

// cacheEntry is the parsed content of one collection file together with the
// file stamp it was read from.
type cacheEntry struct {
	set     *docset.Set
	modTime time.Time
	size    int64
}

// cache keeps parsed collections so reads do not re-parse unchanged files.
// An entry is fresh while the file's mtime and size match the stamp.
type cache struct {
	mu      sync.RWMutex
	entries map[core.Kind]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[core.Kind]*cacheEntry)}
}

// get returns the cached set for kind if it matches info.
func (c *cache) get(kind core.Kind, info os.FileInfo) (*docset.Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[kind]
	if !ok || info == nil {
		return nil, false
	}
	if !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size() {
		return nil, false
	}
	return entry.set, true
}

// put records set as the content of kind's file described by info.
func (c *cache) put(kind core.Kind, set *docset.Set, info os.FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{set: set}
	if info != nil {
		entry.modTime = info.ModTime()
		entry.size = info.Size()
	}
	c.entries[kind] = entry
}

// invalidate drops the entry for kind.
func (c *cache) invalidate(kind core.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, kind)
}

// len returns the number of cached documents across collections.
func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		n += e.set.Len()
	}
	return n
}
