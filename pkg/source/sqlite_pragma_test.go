package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite_AppliesPragmasPerConnection(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "candidates.db"), 0, nil)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	// Two held connections force the pool to open a second one.
	first, err := db.db.Conn(ctx)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()
	second, err := db.db.Conn(ctx)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	for _, conn := range []*sql.Conn{first, second} {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	}
}
