// Package backendtest holds the behavior every drivedav.Backend shares,
// written once and run against each implementation.
package backendtest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend.
type Factory func(t *testing.T) drivedav.Backend

// Run exercises newBackend against the Backend contract.
func Run(t *testing.T, newBackend Factory) {
	t.Run("root always exists", func(t *testing.T) {
		b := newBackend(t)
		info, err := b.Stat(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, drivedav.KindCollection, info.Kind)

		names, err := b.List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("write then read", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		n, err := b.Write(ctx, "hello.txt", bytes.NewReader([]byte("hello world")))
		require.NoError(t, err)
		assert.Equal(t, int64(11), n)

		info, err := b.Stat(ctx, "hello.txt")
		require.NoError(t, err)
		assert.Equal(t, drivedav.KindFile, info.Kind)
		assert.Equal(t, int64(11), info.Size)

		assert.Equal(t, "hello world", readAll(t, b, "hello.txt"))
	})

	t.Run("write replaces content", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "f", bytes.NewReader([]byte("first version")))
		require.NoError(t, err)
		_, err = b.Write(ctx, "f", bytes.NewReader([]byte("second")))
		require.NoError(t, err)

		assert.Equal(t, "second", readAll(t, b, "f"))
	})

	t.Run("write creates missing parents", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "a/b/c.txt", bytes.NewReader([]byte("x")))
		require.NoError(t, err)

		for _, p := range []string{"a", "a/b"} {
			info, err := b.Stat(ctx, p)
			require.NoError(t, err, p)
			assert.Equal(t, drivedav.KindCollection, info.Kind, p)
		}
	})

	t.Run("write onto collection conflicts", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.CreateCollection(ctx, "dir"))
		_, err := b.Write(ctx, "dir", bytes.NewReader([]byte("x")))
		assert.ErrorIs(t, err, drivedav.ErrConflict)
	})

	t.Run("write below file conflicts", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "file", bytes.NewReader([]byte("x")))
		require.NoError(t, err)
		_, err = b.Write(ctx, "file/child", bytes.NewReader([]byte("y")))
		assert.ErrorIs(t, err, drivedav.ErrConflict)
	})

	t.Run("stat missing", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Stat(context.Background(), "nope")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)
	})

	t.Run("read collection is not found", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.CreateCollection(ctx, "dir"))
		_, err := b.Read(ctx, "dir")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)

		_, err = b.Read(ctx, "missing")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)
	})

	t.Run("read is seekable", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "seek.bin", bytes.NewReader([]byte("0123456789")))
		require.NoError(t, err)

		rc, err := b.Read(ctx, "seek.bin")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		_, err = rc.Seek(5, io.SeekStart)
		require.NoError(t, err)
		rest, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "56789", string(rest))
	})

	t.Run("create collection", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.CreateCollection(ctx, "docs"))
		info, err := b.Stat(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, drivedav.KindCollection, info.Kind)

		names, err := b.List(ctx, "docs")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("create collection conflicts", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.CreateCollection(ctx, "docs"))
		assert.ErrorIs(t, b.CreateCollection(ctx, "docs"), drivedav.ErrConflict, "exists")
		assert.ErrorIs(t, b.CreateCollection(ctx, "missing/child"), drivedav.ErrConflict, "no parent")

		_, err := b.Write(ctx, "file", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.ErrorIs(t, b.CreateCollection(ctx, "file"), drivedav.ErrConflict, "file exists")
		assert.ErrorIs(t, b.CreateCollection(ctx, "file/child"), drivedav.ErrConflict, "parent is file")
	})

	t.Run("list direct children", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		for _, p := range []string{"d/one.txt", "d/two.txt", "d/sub/deep.txt", "other.txt"} {
			_, err := b.Write(ctx, p, bytes.NewReader([]byte(p)))
			require.NoError(t, err)
		}

		names, err := b.List(ctx, "d")
		require.NoError(t, err)
		sort.Strings(names)
		assert.Equal(t, []string{"one.txt", "sub", "two.txt"}, names)

		names, err = b.List(ctx, "")
		require.NoError(t, err)
		sort.Strings(names)
		assert.Equal(t, []string{"d", "other.txt"}, names)
	})

	t.Run("list errors", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.List(ctx, "missing")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)

		_, err = b.Write(ctx, "file", bytes.NewReader(nil))
		require.NoError(t, err)
		_, err = b.List(ctx, "file")
		assert.ErrorIs(t, err, drivedav.ErrConflict)
	})

	t.Run("remove file", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "f", bytes.NewReader([]byte("x")))
		require.NoError(t, err)

		n, err := b.Remove(ctx, "f", false)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = b.Stat(ctx, "f")
		assert.ErrorIs(t, err, drivedav.ErrNotFound)

		_, err = b.Remove(ctx, "f", false)
		assert.ErrorIs(t, err, drivedav.ErrNotFound)
	})

	t.Run("remove collection", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		for _, p := range []string{"d/a", "d/b", "d/sub/c"} {
			_, err := b.Write(ctx, p, bytes.NewReader([]byte("x")))
			require.NoError(t, err)
		}

		_, err := b.Remove(ctx, "d", false)
		assert.ErrorIs(t, err, drivedav.ErrConflict, "non-recursive on non-empty collection")

		n, err := b.Remove(ctx, "d", true)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		for _, p := range []string{"d", "d/a", "d/sub", "d/sub/c"} {
			_, err := b.Stat(ctx, p)
			assert.ErrorIs(t, err, drivedav.ErrNotFound, p)
		}
	})

	t.Run("remove leaves siblings with shared prefix", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "dir/x", bytes.NewReader([]byte("x")))
		require.NoError(t, err)
		_, err = b.Write(ctx, "dir2/y", bytes.NewReader([]byte("y")))
		require.NoError(t, err)

		_, err = b.Remove(ctx, "dir", true)
		require.NoError(t, err)

		assert.Equal(t, "y", readAll(t, b, "dir2/y"))
	})

	t.Run("names with spaces and unicode", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		p := "My Documents/résumé 2024.txt"
		_, err := b.Write(ctx, p, bytes.NewReader([]byte("cv")))
		require.NoError(t, err)

		names, err := b.List(ctx, "My Documents")
		require.NoError(t, err)
		assert.Equal(t, []string{"résumé 2024.txt"}, names)
		assert.Equal(t, "cv", readAll(t, b, p))
	})

	t.Run("names with like wildcards", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		_, err := b.Write(ctx, "a_b/x", bytes.NewReader([]byte("1")))
		require.NoError(t, err)
		_, err = b.Write(ctx, "acb/y", bytes.NewReader([]byte("2")))
		require.NoError(t, err)
		_, err = b.Write(ctx, "100%/z", bytes.NewReader([]byte("3")))
		require.NoError(t, err)

		names, err := b.List(ctx, "a_b")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, names)

		names, err = b.List(ctx, "100%")
		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, names)
	})
}

func readAll(t *testing.T, b drivedav.Backend, p string) string {
	t.Helper()

	rc, err := b.Read(context.Background(), p)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
