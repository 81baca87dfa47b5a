package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopstack/backend/internal/domain/shared"
)

// InMemoryCache is a process-local tag-based cache. State is not shared
// across instances, so invalidations on one node do not reach the others.
// Suitable for single-instance deployments and testing.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	tags    map[string]map[string]struct{}
	done    chan struct{}
	once    sync.Once
}

type inMemoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e inMemoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewInMemoryCache creates an in-memory cache with a background sweeper
// that evicts expired entries once a minute.
func NewInMemoryCache() *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]inMemoryEntry),
		tags:    make(map[string]map[string]struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep(time.Minute)
	return c
}

func (c *InMemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired(now) {
					c.dropLocked(key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// dropLocked removes an entry and its tag registrations. Caller holds the lock.
func (c *InMemoryCache) dropLocked(key string) {
	delete(c.entries, key)
	for tag, members := range c.tags {
		delete(members, key)
		if len(members) == 0 {
			delete(c.tags, tag)
		}
	}
}

// Get returns the raw entry for key, or (nil, nil) on miss. Expired
// entries are evicted lazily on read.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if entry.expired(time.Now()) {
		c.mu.Lock()
		c.dropLocked(key)
		c.mu.Unlock()
		return nil, nil
	}

	// Copy so callers cannot mutate the cached slice.
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores value under key and registers it in each tag set.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	entry := inMemoryEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	for _, tag := range tags {
		members, ok := c.tags[tag]
		if !ok {
			members = make(map[string]struct{})
			c.tags[tag] = members
		}
		members[key] = struct{}{}
	}
	return nil
}

// RemoveByTag drops every entry registered under the tag.
func (c *InMemoryCache) RemoveByTag(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tags[tag] {
		delete(c.entries, key)
	}
	delete(c.tags, tag)
	return nil
}

// Close stops the background sweeper.
func (c *InMemoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

var _ shared.Cache = (*InMemoryCache)(nil)
