package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "presenter.db")
	require.NoError(t, InitDatabase(path))
	t.Cleanup(func() { Close() })

	for _, table := range []string{"presenter_remotes", "transitions"} {
		var name string
		err := DB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}

	// schema creation is idempotent
	assert.NoError(t, CreateTables(DB))
}
