package shared

import (
	"context"
	"time"
)

// Cache tags used by the write paths. Invalidation is all-or-nothing per
// tag group: a write drops the whole group rather than individual keys.
const (
	CacheTagInventory = "inventory"
	CacheTagProduct   = "product"
	CacheTagWarehouse = "warehouse"
)

// Cache is a tag-based cache-aside store. Entries are populated only on
// read-miss and invalidated only after a successful commit, never before.
// Implementations must treat the relational store as the source of truth:
// a cache failure on read degrades to a miss, never to an error surfaced
// to the caller's business flow.
type Cache interface {
	// Get returns the raw entry for key, or (nil, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key with the given TTL and associates it
	// with every tag so RemoveByTag can drop it later.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	// RemoveByTag drops every entry associated with the tag.
	RemoveByTag(ctx context.Context, tag string) error
	// Close releases any resources held by the cache.
	Close() error
}
