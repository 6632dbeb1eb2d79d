// Package schemacache caches compiled template schemas in Redis.
package schemacache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docschema/docschema/pkg/metrics"
)

const DefaultTTL = 5 * time.Minute

// Cache stores compiled schema bytes by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, b []byte) error
	Invalidate(ctx context.Context, customerID, templateID string) error
}

// Key identifies one compiled schema. The template's UpdatedAt is part of the
// key, so any mutation of the template misses the old entry.
func Key(customerID, templateID string, updatedAt time.Time, variant string) string {
	return fmt.Sprintf("%s:%s:%d:%s", customerID, templateID, updatedAt.UnixNano(), variant)
}

// RedisCache implements Cache. Entries are stored under "<prefix><key>" with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache. Prefix may be empty, a
// non-positive ttl selects DefaultTTL.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "schema:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.SchemaCache.WithLabelValues("miss").Inc()
			return nil, false, nil
		}
		metrics.SchemaCache.WithLabelValues("error").Inc()
		return nil, false, err
	}
	metrics.SchemaCache.WithLabelValues("hit").Inc()
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, b []byte) error {
	return r.client.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

// Invalidate removes every cached variant and revision of one template.
func (r *RedisCache) Invalidate(ctx context.Context, customerID, templateID string) error {
	pattern := r.prefix + customerID + ":" + templateID + ":*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
