// Package cache keeps the last known server answers per user. Entries live in
// memory and are mirrored to the local metadata table so they survive a
// restart.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	gocache "github.com/patrickmn/go-cache"
)

const persistPrefix = "cache:"

type Cache struct {
	mem  *gocache.Cache
	repo metadata.Repository
}

// New builds a cache whose in-memory copies expire after ttl. Persisted
// copies do not expire.
func New(repo metadata.Repository, ttl time.Duration) *Cache {
	return &Cache{
		mem:  gocache.New(ttl, 2*ttl),
		repo: repo,
	}
}

// Key scopes an API path (with query) to a user.
func Key(userID int64, path string) string {
	return UserPrefix(userID) + path
}

func UserPrefix(userID int64) string {
	return fmt.Sprintf("u%d:", userID)
}

// Get returns the cached bytes for key, loading them from disk when the
// in-memory copy is gone.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.mem.Get(key); ok {
		return v.([]byte), true, nil
	}
	raw, err := c.repo.Get(ctx, persistPrefix+key)
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	c.mem.SetDefault(key, raw)
	return raw, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.mem.SetDefault(key, value)
	return c.repo.Set(ctx, persistPrefix+key, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mem.Delete(key)
	return c.repo.Delete(ctx, persistPrefix+key)
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(ctx context.Context, prefix string) error {
	for k := range c.mem.Items() {
		if strings.HasPrefix(k, prefix) {
			c.mem.Delete(k)
		}
	}
	return c.repo.DeletePrefix(ctx, persistPrefix+prefix)
}

// GetJSON decodes the entry at key into a T.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var v T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return v, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw)
}
