package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/badgerkv"
	"github.com/sagarc03/drivedav/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) storage.Config
	}{
		{
			name: "filesystem",
			cfg: func(t *testing.T) storage.Config {
				return storage.Config{Type: storage.TypeFilesystem, Path: filepath.Join(t.TempDir(), "data")}
			},
		},
		{
			name: "memory",
			cfg: func(*testing.T) storage.Config {
				return storage.Config{Type: storage.TypeMemory}
			},
		},
		{
			name: "sqlite",
			cfg: func(t *testing.T) storage.Config {
				return storage.Config{
					Type:  storage.TypeSQLite,
					DSN:   filepath.Join(t.TempDir(), "drivedav.db"),
					Table: "drivedav_entries",
				}
			},
		},
		{
			name: "badger",
			cfg: func(*testing.T) storage.Config {
				return storage.Config{Type: storage.TypeBadger, Badger: badgerkv.Config{InMemory: true}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			backend, cleanup, err := storage.Open(ctx, tt.cfg(t))
			require.NoError(t, err)
			require.NotNil(t, cleanup)
			defer cleanup()

			_, err = backend.Write(ctx, "docs/a.txt", bytes.NewReader([]byte("hello")))
			require.NoError(t, err)

			info, err := backend.Stat(ctx, "docs")
			require.NoError(t, err)
			assert.Equal(t, drivedav.KindCollection, info.Kind)
		})
	}
}

func TestOpen_FilesystemCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "root")

	_, cleanup, err := storage.Open(context.Background(), storage.Config{Type: storage.TypeFilesystem, Path: dir})
	require.NoError(t, err)
	defer cleanup()

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"unknown type", storage.Config{Type: "floppy"}},
		{"filesystem without path", storage.Config{Type: storage.TypeFilesystem}},
		{"badger without dir", storage.Config{Type: storage.TypeBadger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := storage.Open(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, drivedav.ErrInvalidInput)
		})
	}
}
