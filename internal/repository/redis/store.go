package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/redis/go-redis/v9"
)

const storePrefix = "client:"

// Store shares client state through Redis. Keys never expire.
type Store struct {
	client *Client
}

// NewStore creates a Redis-backed client store
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Get returns the value stored under key or store.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.rdb.Get(ctx, storePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set writes value under key without expiry
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.rdb.Set(ctx, storePrefix+key, value, 0).Err()
}

// Close releases the underlying connection
func (s *Store) Close() error {
	return s.client.Close()
}
