package filesystem_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/filesystem"
	"github.com/sagarc03/drivedav/internal/backendtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	osDir, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = osDir.Close() })
	return filesystem.NewStore(osDir), tempDir
}

func TestStore_Backend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) drivedav.Backend {
		store, _ := newStore(t)
		return store
	})
}

func TestStore_Read_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("test content")
	err := os.WriteFile(filepath.Join(tempDir, "test.txt"), content, 0o644)
	assert.NoError(t, err)

	result, err := store.Read(context.Background(), "test.txt")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())
}

func TestStore_Read_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Read(ctx, "test.txt")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Stat_FileAsDirectory(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "file"), []byte("x"), 0o644))

	_, err := store.Stat(context.Background(), "file/child")
	assert.ErrorIs(t, err, drivedav.ErrNotFound)
}

func TestStore_Write_OnDisk(t *testing.T) {
	store, tempDir := newStore(t)

	n, err := store.Write(context.Background(), "sub/dir/test.txt", bytes.NewReader([]byte("on disk")))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	data, err := os.ReadFile(filepath.Join(tempDir, "sub", "dir", "test.txt"))
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := store.Write(ctx, "test.txt", bytes.NewReader([]byte("test")))

	assert.Error(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())

	slowReader := &slowReader{
		data:   []byte("test content"),
		cancel: cancel,
	}

	n, err := store.Write(ctx, "test.txt", slowReader)

	assert.Error(t, err)
	assert.Equal(t, int64(0), n)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file is removed and nothing is renamed into place")
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestStore_List_HidesTempFiles(t *testing.T) {
	store, tempDir := newStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".drivedav-tmp-123"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "visible.txt"), []byte("x"), 0o644))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.txt"}, names)
}

func TestStore_RejectsTempNames(t *testing.T) {
	ctx := context.Background()

	for _, p := range []string{".drivedav-tmp-x", "docs/.drivedav-tmp-y", ".drivedav-tmp-dir/file.txt"} {
		t.Run(p, func(t *testing.T) {
			store, tempDir := newStore(t)

			_, err := store.Write(ctx, p, bytes.NewReader([]byte("hidden")))
			assert.ErrorIs(t, err, drivedav.ErrForbidden)

			err = store.CreateCollection(ctx, p)
			assert.ErrorIs(t, err, drivedav.ErrForbidden)

			_, err = os.Stat(filepath.Join(tempDir, filepath.FromSlash(p)))
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}

	t.Run("leftover temp files are invisible", func(t *testing.T) {
		store, tempDir := newStore(t)
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".drivedav-tmp-123"), []byte("partial"), 0o644))

		_, err := store.Stat(ctx, ".drivedav-tmp-123")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)

		_, err = store.Read(ctx, ".drivedav-tmp-123")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)
	})
}

func TestStore_Remove_Root(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Remove(context.Background(), "", true)
	assert.ErrorIs(t, err, drivedav.ErrForbidden)
}

func TestStore_SymlinkEscape(t *testing.T) {
	store, tempDir := newStore(t)

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("secret"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(tempDir, "escape")))

	_, err := store.Read(context.Background(), "escape/secret")
	assert.Error(t, err)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	done := make(chan bool, 10)
	for i := range 10 {
		go func(n int) {
			content := fmt.Appendf(nil, "content-%d", n)
			path := fmt.Sprintf("dir/file-%d.txt", n)
			_, err := store.Write(ctx, path, bytes.NewReader(content))
			assert.NoError(t, err)
			done <- true
		}(i)
	}

	for range 10 {
		<-done
	}

	names, err := store.List(ctx, "dir")
	assert.NoError(t, err)
	assert.Len(t, names, 10)
}
