// Package cache memoizes name suggestions by document content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/pdf-renamer/constants"
)

// SuggestionCache maps a SHA-256 of extracted text to a sanitized name.
// It is bounded and safe for concurrent use. The first write for a given
// content wins; once full, the oldest entry is evicted.
type SuggestionCache struct {
	mu      sync.Mutex
	entries map[string]string
	order   []string
	max     int
	logger  *slog.Logger
}

// NewSuggestionCache creates a cache holding at most maxEntries suggestions.
// A non-positive maxEntries selects the default bound.
func NewSuggestionCache(maxEntries int, logger *slog.Logger) *SuggestionCache {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheEntries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionCache{
		entries: make(map[string]string),
		max:     maxEntries,
		logger:  logger,
	}
}

// HashContent returns the hex SHA-256 digest used as the cache key.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached suggestion for content.
func (c *SuggestionCache) Get(content string) (string, bool) {
	key := HashContent(content)

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	return s, ok
}

// Put stores suggestion for content unless either is empty or content is
// already cached.
func (c *SuggestionCache) Put(content, suggestion string) {
	if content == "" || suggestion == "" {
		return
	}
	key := HashContent(content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.entries) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.Debug("cache.evict", "key", oldest[:12])
	}
	c.entries[key] = suggestion
	c.order = append(c.order, key)
}

// Clear drops every entry.
func (c *SuggestionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.order = nil
}

// Len returns the number of cached suggestions.
func (c *SuggestionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
