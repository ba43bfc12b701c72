package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig describes the Postgres named by POSTGRES_HOST or skips the test
func testConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		t.Skip("POSTGRES_HOST not set")
	}
	return config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     envOr("POSTGRES_USER", "advisor"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: envOr("POSTGRES_DB", "advisor"),
		SSLMode:  "disable",
		MaxConns: 2,
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := testConfig(t)
	require.NoError(t, RunMigrations(cfg.DSN()))

	db, err := NewDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	key := "test:" + uuid.NewString()

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, key, []byte(`["1","2"]`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `["1","2"]`, string(got))

	require.NoError(t, s.Set(ctx, key, []byte(`[]`)))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, RunMigrations(cfg.DSN()))
	require.NoError(t, RunMigrations(cfg.DSN()))
}
