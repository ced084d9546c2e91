package export

import (
	"bytes"
	"container/heap"
	"context"
	"io"
	"sync"
	"time"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

const (
	defaultCacheBytes = 32 << 20
	defaultCacheTTL   = 10 * time.Minute
)

// RenderCache keeps rendered exports in memory, evicting the least recently used
// entry once maxBytes is exceeded. Entries also expire after ttl.
type RenderCache struct {
	mu       sync.Mutex
	entries  map[string]*renderEntry
	order    *accessHeap
	maxBytes int64
	ttl      time.Duration
	size     int64
	stats    entities.CacheStats
	now      func() time.Time
}

type renderEntry struct {
	data      []byte
	expiresAt time.Time
	order     *heapEntry
}

// NewRenderCache creates a cache. Zero values pick 32 MiB and ten minutes.
func NewRenderCache(maxBytes int64, ttl time.Duration) *RenderCache {
	if maxBytes <= 0 {
		maxBytes = defaultCacheBytes
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	h := &accessHeap{}
	heap.Init(h)

	return &RenderCache{
		entries:  make(map[string]*renderEntry),
		order:    h,
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached render for key
func (c *RenderCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	now := c.now()
	if now.After(entry.expiresAt) {
		c.remove(key, entry)
		c.stats.Evictions++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	entry.order.lastAccess = now
	heap.Fix(c.order, entry.order.index)
	return entry.data, true
}

// Set stores data under key. Renders larger than the whole cache are not kept.
func (c *RenderCache) Set(key string, data []byte) {
	size := int64(len(data))
	if size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.remove(key, existing)
	}

	c.evict(size)

	now := c.now()
	order := &heapEntry{key: key, lastAccess: now}
	heap.Push(c.order, order)
	c.entries[key] = &renderEntry{
		data:      data,
		expiresAt: now.Add(c.ttl),
		order:     order,
	}
	c.size += size
}

// Clear drops every entry
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*renderEntry)
	*c.order = (*c.order)[:0]
	c.size = 0
}

// Stats returns a snapshot of the cache counters
func (c *RenderCache) Stats() entities.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	stats.Bytes = c.size
	stats.MaxBytes = c.maxBytes
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// evict drops expired entries, then least recently used ones, until needed bytes fit. Caller holds mu.
func (c *RenderCache) evict(needed int64) {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			c.remove(key, entry)
			c.stats.Evictions++
		}
	}

	for c.size+needed > c.maxBytes && c.order.Len() > 0 {
		oldest := heap.Pop(c.order).(*heapEntry)
		if entry, ok := c.entries[oldest.key]; ok {
			delete(c.entries, oldest.key)
			c.size -= int64(len(entry.data))
			c.stats.Evictions++
		}
	}
}

// remove deletes key. Caller holds mu.
func (c *RenderCache) remove(key string, entry *renderEntry) {
	if entry.order.index >= 0 {
		heap.Remove(c.order, entry.order.index)
	}
	delete(c.entries, key)
	c.size -= int64(len(entry.data))
}

// CachingExporter serves repeat exports of the same deck from a RenderCache.
// Decks are keyed by ID, which changes on every parse, so entries never go stale.
type CachingExporter struct {
	ports.DeckExporter
	cache *RenderCache
}

// NewCachingExporter wraps exporter with cache
func NewCachingExporter(exporter ports.DeckExporter, cache *RenderCache) *CachingExporter {
	return &CachingExporter{DeckExporter: exporter, cache: cache}
}

// Export writes the cached render when there is one, otherwise renders and caches it
func (e *CachingExporter) Export(ctx context.Context, deck *entities.Deck, format string, w io.Writer) error {
	if deck == nil || deck.ID == "" {
		return e.DeckExporter.Export(ctx, deck, format, w)
	}

	parsed, err := ParseFormat(format)
	if err != nil {
		return err
	}

	key := deck.ID + "/" + string(parsed)
	if data, ok := e.cache.Get(key); ok {
		_, err := w.Write(data)
		return err
	}

	var buf bytes.Buffer
	if err := e.DeckExporter.Export(ctx, deck, string(parsed), &buf); err != nil {
		return err
	}
	e.cache.Set(key, buf.Bytes())

	_, err = w.Write(buf.Bytes())
	return err
}

// CacheStats reports the underlying cache counters
func (e *CachingExporter) CacheStats() entities.CacheStats {
	return e.cache.Stats()
}

// Ensure CachingExporter implements ports.DeckExporter
var _ ports.DeckExporter = (*CachingExporter)(nil)
