package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Rrens/routine-advisor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) store.Store {
	return map[string]func(t *testing.T) store.Store{
		"memory": func(t *testing.T) store.Store {
			return store.NewMemory()
		},
		"bolt": func(t *testing.T) store.Store {
			s, err := store.OpenBolt(filepath.Join(t.TempDir(), "state", "client.bolt"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) store.Store {
			s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "client.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_Conformance(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			_, err := s.Get(ctx, "selected_products_v1")
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Set(ctx, "selected_products_v1", []byte(`[1,2]`)))
			got, err := s.Get(ctx, "selected_products_v1")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, s.Set(ctx, "selected_products_v1", []byte(`[]`)))
			got, err = s.Get(ctx, "selected_products_v1")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestStore_BoltReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.bolt")

	s, err := store.OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "chat_messages_v1", []byte(`[{"role":"user","content":"hi"}]`)))
	require.NoError(t, s.Close())

	s, err = store.OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "chat_messages_v1")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"hi"`)
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	base := store.NewMemory()

	alice := store.WithPrefix(base, "alice:")
	bob := store.WithPrefix(base, "bob:")

	require.NoError(t, alice.Set(ctx, "k", []byte("a")))

	_, err := bob.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)

	raw, err := base.Get(ctx, "alice:k")
	require.NoError(t, err)
	assert.Equal(t, "a", string(raw))

	assert.Same(t, base, store.WithPrefix(base, ""))
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	v := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
