package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/jackc/pgx/v5"
)

// Store keeps client state in the client_state table
type Store struct {
	db *DB
}

// NewStore creates a Postgres-backed client store. The schema must already
// be migrated.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key or store.ErrNotFound
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
