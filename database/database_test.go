package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database"
	"github.com/sagarc03/drivedav/keyvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "drivedav.db")
	cfg := database.Config{Type: "sqlite", DSN: dsn, Table: "drivedav_entries"}

	m, cleanup, err := database.Connect(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Put(ctx, keyvalue.Record{Key: "kept", Kind: drivedav.KindFile, Size: 2}, []byte("ok")))
	cleanup()

	// Reopening runs migrations again and sees the stored row.
	m, cleanup, err = database.Connect(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	content, err := m.Load(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(content))
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := database.Connect(ctx, database.Config{Type: "mysql", DSN: "x", Table: "entries"})
	assert.Error(t, err)

	_, _, err = database.Connect(ctx, database.Config{Type: "sqlite", DSN: ":memory:", Table: "Bad-Name"})
	assert.Error(t, err)
}
