// Package cache provides a small in-process TTL cache used by the store
// to avoid re-reading rarely changing rows such as user settings.
package cache

import (
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// DefaultTTL is how long entries stay valid.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
	// MaxItems caps the number of entries; zero means unbounded.
	MaxItems int
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL map with periodic cleanup.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]entry
	config  Config
	stopper chan struct{}
	once    sync.Once
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		items:   make(map[string]entry),
		config:  config,
		stopper: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		// Full: drop everything rather than tracking eviction order.
		c.items = make(map[string]entry)
	}
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(c.config.DefaultTTL)}
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stopper) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.items {
				if now.After(e.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopper:
			return
		}
	}
}
