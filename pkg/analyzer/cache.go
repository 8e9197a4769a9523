package analyzer

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache maps content hashes to analysis results. Entries are never
// invalidated: a given content always yields the same result.
type Cache interface {
	Get(hash string) (*Result, bool)
	Add(hash string, result *Result)
	Len() int
}

// MapCache is an unbounded Cache for a single compile run.
type MapCache struct {
	entries map[string]*Result
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string]*Result)}
}

func (c *MapCache) Get(hash string) (*Result, bool) {
	r, ok := c.entries[hash]
	return r, ok
}

func (c *MapCache) Add(hash string, result *Result) {
	c.entries[hash] = result
}

func (c *MapCache) Len() int {
	return len(c.entries)
}

// LRUCache is a bounded Cache for long-lived sessions, where edits keep
// producing new content hashes. It is safe for concurrent use.
type LRUCache struct {
	cache *lru.Cache[string, *Result]
}

// NewLRUCache returns an LRUCache holding at most size results. Evictions
// are logged at debug level.
func NewLRUCache(size int, logger *slog.Logger) (*LRUCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := lru.NewWithEvict(size, func(hash string, result *Result) {
		logger.Debug("evicted analysis from cache",
			"hash", hash,
			"type", string(result.Type))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer cache: %w", err)
	}
	return &LRUCache{cache: c}, nil
}

func (c *LRUCache) Get(hash string) (*Result, bool) {
	return c.cache.Get(hash)
}

func (c *LRUCache) Add(hash string, result *Result) {
	c.cache.Add(hash, result)
}

func (c *LRUCache) Len() int {
	return c.cache.Len()
}
