// Package cache provides the in-process cache used by the store facade.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	OnEviction      func(key string)
}

// Cache is an LRU cache with TTL support, safe for concurrent use.
type Cache struct {
	config Config

	mu    sync.Mutex
	items map[string]*entry
	order *list.List // front = most recently used

	done chan struct{}
	once sync.Once
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	element   *list.Element
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}

	c := &Cache{
		config: config,
		items:  make(map[string]*entry),
		order:  list.New(),
		done:   make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.items[key] = e

	for len(c.items) > c.config.MaxItems {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeEntry(oldest.Value.(*entry))
	}
}

// Delete removes a key. Deleting a missing key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
	}
}

// Purge drops every entry without firing eviction callbacks.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry)
	c.order.Init()
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) removeEntry(e *entry) {
	delete(c.items, e.key)
	c.order.Remove(e.element)
	if c.config.OnEviction != nil {
		c.config.OnEviction(e.key)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for _, e := range c.items {
				if now.After(e.expiresAt) {
					c.removeEntry(e)
				}
			}
			c.mu.Unlock()
		}
	}
}
