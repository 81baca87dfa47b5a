package cache

import (
	"context"
	"time"

	"github.com/shopstack/backend/internal/domain/shared"
)

// NopCache never stores anything: every read is a miss, so the read
// paths always hit the relational store. Used when caching is disabled.
type NopCache struct{}

// NewNopCache creates a NopCache.
func NewNopCache() *NopCache {
	return &NopCache{}
}

// Get always reports a miss.
func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, nil }

// Set discards the entry.
func (NopCache) Set(context.Context, string, []byte, time.Duration, ...string) error { return nil }

// RemoveByTag does nothing.
func (NopCache) RemoveByTag(context.Context, string) error { return nil }

// Close does nothing.
func (NopCache) Close() error { return nil }

var _ shared.Cache = (*NopCache)(nil)
