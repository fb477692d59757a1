package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Cache holds the most recent parsed document of each source label. A
// document is parsed again when the text under its label changes, which
// replaces the earlier entry. Parsed documents are never modified by
// rendering, so a cached document may be shared by any number of templates
// and goroutines. Rendered output is never cached.
//
// The zero Cache is ready to use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	sum  uint64
	once sync.Once
	doc  *Document
}

// NewCache returns an empty cache.
func NewCache() *Cache { return new(Cache) }

// entry returns the entry for name holding text, replacing any entry parsed
// from other text. It reports whether the entry was already present.
func (c *Cache) entry(name, text string) (*cacheEntry, bool) {
	sum := xxh3.HashString(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]*cacheEntry)
	}

	if e, ok := c.entries[name]; ok && e.sum == sum {
		return e, true
	}

	e := &cacheEntry{sum: sum}
	c.entries[name] = e

	return e, false
}

// Parse returns the document parsed from text, parsing it on first use.
func (c *Cache) Parse(
	ctx context.Context,
	name, text string,
	opts ...Option,
) *Document {
	entry, hit := c.entry(name, text)

	entry.once.Do(func() {
		entry.doc = ParseString(ctx, name, text, opts...)
	})

	cfg := makeConfig(opts...)
	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("file", name),
		slog.String("hash", strconv.FormatUint(entry.sum, 36)),
		slog.Bool("cache_hit", hit),
	)

	return entry.doc
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear removes every cached document.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// WithCache makes templates parse their sources through c.
func WithCache(c *Cache) Option {
	return func(cfg *config) {
		cfg.cache = c
	}
}

// parse parses text with cfg's cache, if any.
func (cfg config) parse(ctx context.Context, name, text string) *Document {
	if cfg.cache != nil {
		return cfg.cache.Parse(ctx, name, text, WithLogger(cfg.logger))
	}

	return ParseString(ctx, name, text, WithLogger(cfg.logger))
}
