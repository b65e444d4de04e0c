package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "nutriscan_goal")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "nutriscan_goal", "Weight Loss"))
	v, found, err := s.Get(ctx, "nutriscan_goal")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Weight Loss", v)

	require.NoError(t, s.Set(ctx, "nutriscan_goal", "Muscle Build"))
	v, _, err = s.Get(ctx, "nutriscan_goal")
	require.NoError(t, err)
	assert.Equal(t, "Muscle Build", v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nutriscan.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(context.Background(), "nutriscan_goal")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Muscle Build", v)
}

func TestNamespacedIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := Namespaced(base, ChatPrefix(1))
	b := Namespaced(base, ChatPrefix(2))

	exerciseStore(t, a)

	_, found, err := b.Get(ctx, "nutriscan_goal")
	require.NoError(t, err)
	assert.False(t, found)

	v, found, err := base.Get(ctx, "chat:1:nutriscan_goal")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Muscle Build", v)

	require.NoError(t, a.Close())
	assert.Equal(t, 1, base.Keys(), "closing a namespace leaves the backend usable")
}

func TestNamespacedEmptyPrefix(t *testing.T) {
	base := NewMemoryStore()
	assert.Same(t, Store(base), Namespaced(base, ""))
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, "chat:42:", ChatPrefix(42))
	assert.Equal(t, "client:abc:", ClientPrefix("abc"))
}
