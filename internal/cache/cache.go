// Package cache provides the optional Redis cache for search results and the
// instrumented Searcher that consults it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/flyer-price-tracker/internal/config"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const (
	keyNamespace = "fpt"
	searchPrefix = "search"
)

// ErrMiss is returned by Get when no result is cached under the key.
var ErrMiss = errors.New("cache miss")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
}

// Cache stores search results in Redis.
type Cache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{store: raw, raw: raw, ttl: cfg.TTL}, nil
}

func optionsFromConfig(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if opts.DB == 0 {
			opts.DB = cfg.DB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// Get returns the result cached under key, or ErrMiss.
func (c *Cache) Get(ctx context.Context, key string) (*domain.SearchResult, error) {
	data, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var result domain.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, nil
}

// Set caches result under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, result *domain.SearchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := c.store.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Cache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// SearchKey builds the cache key for a normalized query against one catalog
// snapshot. Another snapshot, in this process or any other sharing the
// cache, never reuses the entry.
func SearchKey(snapshotID string, q domain.SearchQuery) string {
	stores := slices.Clone(q.Stores)
	slices.Sort(stores)
	return strings.Join([]string{
		keyNamespace,
		searchPrefix,
		snapshotID,
		string(q.SortBy),
		strconv.Itoa(q.Limit),
		strings.Join(stores, ","),
		strings.ToLower(q.Term),
	}, ":")
}
