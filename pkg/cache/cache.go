package cache

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrEmptyKey is returned by Set when the key is empty.
	ErrEmptyKey = errors.New("cache: empty key")

	// ErrEmptyValue is returned by Set when the value is empty.
	ErrEmptyValue = errors.New("cache: empty value")
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is a concurrency-safe key/value store with per-entry expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var shared = New()

// Shared returns the process-wide cache instance.
func Shared() *Cache {
	return shared
}

// Set stores value under key until expiresAt and reports whether the value
// is retrievable right after the call. An expiry that is not in the future
// removes any existing entry and reports false.
func (c *Cache) Set(key, value string, expiresAt time.Time) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if value == "" {
		return false, ErrEmptyValue
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.now().Before(expiresAt) {
		delete(c.entries, key)
		return false, nil
	}
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
	return true, nil
}

// Get returns the value stored under key if it has not expired.
// An empty key is never present.
func (c *Cache) Get(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	now := c.now()
	if now.Before(e.expiresAt) {
		return e.value, true
	}

	c.mu.Lock()
	// A concurrent Set may have refreshed the entry in between.
	if cur, ok := c.entries[key]; ok && !now.Before(cur.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return "", false
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge evicts every expired entry and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones that
// have not been evicted yet.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
