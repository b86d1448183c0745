package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetSet(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	value, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	c.Set("a", 2)
	value, _ = c.Get("a")
	assert.Equal(t, 2, value)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL("short", "value", 20*time.Millisecond)
	_, ok := c.Get("short")
	assert.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok)
}

func TestCacheLRUEviction(t *testing.T) {
	var evicted []string
	c := New(Config{
		MaxItems:   2,
		OnEviction: func(key string) { evicted = append(evicted, key) },
	})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" is the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
}

func TestCacheDelete(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	// No-op for missing keys.
	c.Delete("missing")
}

func TestCachePurge(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
