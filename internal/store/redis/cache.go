package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CacheResolution stores a query -> url resolution with the store TTL.
func (s *Store) CacheResolution(ctx context.Context, query, url string) error {
	key := CacheKey(query)
	if err := s.client.Set(ctx, key, url, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache resolution: %w", err)
	}
	return nil
}

// GetResolution retrieves a cached resolution, "" on a miss.
func (s *Store) GetResolution(ctx context.Context, query string) (string, error) {
	key := CacheKey(query)
	url, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached resolution: %w", err)
	}
	return url, nil
}

// InvalidateResolution removes a cached resolution
func (s *Store) InvalidateResolution(ctx context.Context, query string) error {
	key := CacheKey(query)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// FlushResolutions removes all cached resolutions and reports how many.
func (s *Store) FlushResolutions(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("failed to delete cache key: %w", err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("failed to flush cache: %w", err)
	}
	return n, nil
}
