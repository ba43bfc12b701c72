// Package store persists client state as opaque values under string keys.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("store: key not found")

// Store is a small durable key-value store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix scopes every key of s under prefix
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}
