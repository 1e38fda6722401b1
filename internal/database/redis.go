package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/LikkleOra/studio/internal/config"
)

const keywordKeyPrefix = "tmdb:keywords:"

// NewRedis creates a new Redis client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("connected to Redis", "addr", cfg.Addr)
	return client, nil
}

// KeywordCache keeps free-text to keyword-id resolutions in Redis.
// Redis failures are logged and treated as misses.
type KeywordCache struct {
	client *redis.Client
}

// NewKeywordCache wraps client.
func NewKeywordCache(client *redis.Client) *KeywordCache {
	return &KeywordCache{client: client}
}

func keywordKey(query string) string {
	return keywordKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// GetKeywords returns the cached ids for query.
func (k *KeywordCache) GetKeywords(ctx context.Context, query string) ([]int, bool) {
	data, err := k.client.Get(ctx, keywordKey(query)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("keyword cache read failed", "error", err)
		}
		return nil, false
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("keyword cache entry corrupt", "query", query, "error", err)
		return nil, false
	}
	return ids, true
}

// SetKeywords stores ids for query. An empty result is cached too, so repeated
// lookups for text with no keywords stay off the catalog.
func (k *KeywordCache) SetKeywords(ctx context.Context, query string, ids []int, ttl time.Duration) {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := k.client.Set(ctx, keywordKey(query), data, ttl).Err(); err != nil {
		slog.Warn("keyword cache write failed", "error", err)
	}
}
