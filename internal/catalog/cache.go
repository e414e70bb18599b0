package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "catalog:version"

// Cache decorates a Lookup with a versioned Redis cache. Bump invalidates
// every cached entry at once.
type Cache struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache wraps next. A nil client disables caching.
func NewCache(next Lookup, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{next: next, client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates all cached catalog data.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// GetEntry implements Lookup.
func (c *Cache) GetEntry(ctx context.Context, id string) (Entry, error) {
	var entry Entry
	err := c.fetch(ctx, &entry, func(ctx context.Context) (any, error) {
		return c.next.GetEntry(ctx, id)
	}, "entry", id)
	return entry, err
}

// ListEntriesForItem implements Lookup.
func (c *Cache) ListEntriesForItem(ctx context.Context, itemID string) ([]Entry, error) {
	var entries []Entry
	err := c.fetch(ctx, &entries, func(ctx context.Context) (any, error) {
		return c.next.ListEntriesForItem(ctx, itemID)
	}, "item", itemID)
	return entries, err
}

// ListEntries implements Lookup by resolving each ID through the entry cache.
func (c *Cache) ListEntries(ctx context.Context, ids []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := c.GetEntry(ctx, id)
		if errors.Is(err, ErrEntryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Cache) fetch(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	if c.client == nil {
		return load(ctx, dest, loader)
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("catalog:%s:%d", strings.Join(parts, ":"), ver)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
