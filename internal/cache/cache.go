// Package cache is a thin memoization layer over a key-value backend. Expiry
// and eviction belong to the backend; this package only prefixes keys, encodes
// values as JSON and knows which keys belong to a user or a listing.
package cache

import (
	"attorneyhub/backend/internal/config"
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Backend is the generic key-value store the facade sits on.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Cache is safe for concurrent use if its Backend is. A nil *Cache is valid
// and caches nothing.
type Cache struct {
	backend Backend
	prefix  string
	log     *zap.Logger
}

func New(backend Backend, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{backend: backend, prefix: config.CachePrefix, log: log}
}

func (c *Cache) key(k string) string { return c.prefix + k }

// Get decodes the cached value for key into dst and reports whether it was found.
// Backend and decoding errors count as a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.backend.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("cache value undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.key(key), raw, ttl)
}

// Forget removes the given keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.backend.Delete(ctx, prefixed...)
}

// ClearAll removes every key written through this facade.
func (c *Cache) ClearAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.backend.DeleteByPrefix(ctx, c.prefix)
}

// ForgetUser drops the cached membership, complaints and listings of a user.
func (c *Cache) ForgetUser(ctx context.Context, userID string) {
	if err := c.Forget(ctx, UserKeys(userID)...); err != nil {
		c.log.Warn("cache forget user failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// ForgetListing drops the cached listing, its complaints and its reviews.
func (c *Cache) ForgetListing(ctx context.Context, listingID string) {
	if err := c.Forget(ctx, ListingKeys(listingID)...); err != nil {
		c.log.Warn("cache forget listing failed", zap.String("listing_id", listingID), zap.Error(err))
	}
}

// Remember returns the cached value for key, or calls producer, caches its
// result for ttl and returns it. Producer errors are returned and not cached.
// A failing backend degrades to calling producer every time.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
