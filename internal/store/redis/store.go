package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is used when NewStore is given a non-positive TTL.
const DefaultCacheTTL = 10 * time.Minute

// Store caches query resolutions in Redis for `otot serve`.
// It satisfies resolver.Cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
