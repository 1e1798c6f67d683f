// ABOUTME: In-memory cache with TTL-based expiration for news searches
// ABOUTME: Avoids refetching a category or query the user just left

package newscache

import (
	"sync"
	"time"

	"newsterm/internal/client"
)

type entry struct {
	articles  []client.Article
	expiresAt time.Time
}

// Cache holds recent search results keyed by query. Results never touch
// disk; the cache lives only as long as the process.
type Cache struct {
	store sync.Map
	ttl   time.Duration
}

// New creates a cache whose entries expire after ttl
func New(ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl}
	go c.startCleanup()
	return c
}

// Get returns the cached articles for a query, if still fresh
func (c *Cache) Get(query string) ([]client.Article, bool) {
	val, ok := c.store.Load(query)
	if !ok {
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(query)
		return nil, false
	}
	return e.articles, true
}

// Set stores articles for a query
func (c *Cache) Set(query string, articles []client.Article) {
	c.store.Store(query, entry{
		articles:  articles,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Purge drops everything, e.g. on logout
func (c *Cache) Purge() {
	c.store.Range(func(key, _ any) bool {
		c.store.Delete(key)
		return true
	})
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val any) bool {
			if now.After(val.(entry).expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
