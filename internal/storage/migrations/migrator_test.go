package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedSQL(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_kv_store"}, r.IDs())
}

func TestLoadSQLOrdersAndSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql":   {Data: []byte("SELECT 2")},
		"m/0001_a.sql":   {Data: []byte("SELECT 1")},
		"m/README.md":    {Data: []byte("notes")},
		"m/nested/x.sql": {Data: []byte("SELECT 3")},
	}

	r := NewRegistry()
	require.NoError(t, r.LoadSQL(fsys, "m"))
	assert.Equal(t, []string{"0001_a", "0002_b"}, r.IDs())
}

func TestLoadSQLMissingDir(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.LoadSQL(fstest.MapFS{}, "missing"))
}
