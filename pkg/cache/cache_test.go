package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_SetGet_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	ok, err := c.Set("k", "v", clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	clock.Advance(59 * time.Minute)
	_, ok = c.Get("k")
	assert.True(t, ok, "entry should be visible before expiry")

	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must be absent at its expiry instant")
	assert.Zero(t, c.Len(), "expired entry should be evicted on read")
}

func TestCache_SetInPast(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	_, err := c.Set("k", "old", clock.Now().Add(time.Hour))
	require.NoError(t, err)

	ok, err := c.Set("k", "new", clock.Now().Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	_, found := c.Get("k")
	assert.False(t, found, "expired write replaces the previous value")

	ok, err = c.Set("k", "now", clock.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_EmptyKeyAndValue(t *testing.T) {
	c := New()

	_, err := c.Set("", "v", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = c.Set("k", "", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, ok := c.Get("")
	assert.False(t, ok)
}

func TestCache_LastWriteWins(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	_, _ = c.Set("k", "first", clock.Now().Add(time.Hour))
	_, _ = c.Set("k", "second", clock.Now().Add(2*time.Hour))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_DeleteAndPurge(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	_, _ = c.Set("short", "a", clock.Now().Add(time.Minute))
	_, _ = c.Set("long", "b", clock.Now().Add(time.Hour))
	_, _ = c.Set("gone", "c", clock.Now().Add(time.Hour))

	c.Delete("gone")
	assert.Equal(t, 2, c.Len())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestCache_ConcurrentDistinctKeys(t *testing.T) {
	c := New()
	expires := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			val := fmt.Sprintf("val-%d", i)
			for j := 0; j < 100; j++ {
				if _, err := c.Set(key, val, expires); err != nil {
					t.Errorf("Set(%s): %v", key, err)
					return
				}
				if got, ok := c.Get(key); !ok || got != val {
					t.Errorf("Get(%s) = %q, %v; want %q", key, got, ok, val)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, c.Len())
}

func TestShared(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}
