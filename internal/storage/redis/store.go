// Package redis provides a Redis-backed budget repository storing each session
// budget as one JSON document.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection and key layout.
type Options struct {
	Address   string
	DB        int
	KeyPrefix string
	// TTL expires idle budgets; zero keeps them forever.
	TTL time.Duration
}

// Store persists session budgets in Redis.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr: opts.Address,
		DB:   opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Address, err)
	}
	return &Store{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save writes the items of a session as a JSON array.
func (s *Store) Save(ctx context.Context, sessionID string, items []budget.Item) error {
	if items == nil {
		items = []budget.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode budget: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// Load returns the items of a session, or budget.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) ([]budget.Item, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	var items []budget.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	return items, nil
}

// Delete removes the budget of a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
