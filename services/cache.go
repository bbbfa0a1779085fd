package services

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// cacheEntry is one cached response with its insertion time.
type cacheEntry struct {
	response  string
	language  string
	route     string
	timestamp time.Time
}

// ResponseCache memoizes full turn responses keyed by normalized query and
// language. Entries expire after ttl; when the cache is full the oldest 20%
// are evicted.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration

	hits   int64
	misses int64
}

// NewResponseCache creates a cache with the given capacity and TTL.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// CacheKey normalizes the query and hashes it together with the language.
func CacheKey(query, language string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = strings.Join(strings.Fields(normalized), " ")
	sum := md5.Sum([]byte(normalized + ":" + language))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for query+language if it is still fresh.
func (c *ResponseCache) Get(query, language string) (string, string, bool) {
	key := CacheKey(query, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", "", false
	}
	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.misses++
		return "", "", false
	}

	c.hits++
	slog.Debug("Cache hit", "language", language)
	return entry.response, entry.route, true
}

// Set stores a response, evicting the oldest 20% of entries when full.
func (c *ResponseCache) Set(query, language, route, response string) {
	key := CacheKey(query, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{
		response:  response,
		language:  language,
		route:     route,
		timestamp: time.Now(),
	}
}

// evictOldestLocked removes the oldest fifth of the cache. Caller holds mu.
func (c *ResponseCache) evictOldestLocked() {
	type keyed struct {
		key string
		ts  time.Time
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{k, e.timestamp})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.Before(all[j].ts) })

	evict := len(all) / 5
	if evict < 1 {
		evict = 1
	}
	for _, k := range all[:evict] {
		delete(c.entries, k.key)
	}
	slog.Info("Evicted oldest cache entries", "evicted", evict, "remaining", len(c.entries))
}

// Len returns the current entry count.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *ResponseCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
