package keyvalue_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/internal/backendtest"
	"github.com/sagarc03/drivedav/keyvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Backend(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) drivedav.Backend {
		return keyvalue.New(keyvalue.NewMemoryMap())
	})
}

func TestStore_SynthesizedCollections(t *testing.T) {
	ctx := context.Background()
	m := keyvalue.NewMemoryMap()

	// A key written by another tool, without records for its ancestors.
	require.NoError(t, m.Put(ctx, keyvalue.Record{
		Key:     "photos/2024/cat.jpg",
		Kind:    drivedav.KindFile,
		Size:    4,
		ModTime: time.Now(),
	}, []byte("meow")))

	s := keyvalue.New(m)

	info, err := s.Stat(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, drivedav.KindCollection, info.Kind)

	names, err := s.List(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, names)

	names, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"photos"}, names)

	n, err := s.Remove(ctx, "photos", true)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the stored key counts")

	_, err = s.Stat(ctx, "photos")
	assert.ErrorIs(t, err, drivedav.ErrNotFound)
}

func TestStore_WriteMarksParentsAsCollections(t *testing.T) {
	ctx := context.Background()
	m := keyvalue.NewMemoryMap()
	s := keyvalue.New(m)

	_, err := s.Write(ctx, "a/b/c", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	for _, key := range []string{"a", "a/b"} {
		rec, err := m.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, drivedav.KindCollection, rec.Kind, key)
	}
}

func TestStore_RemoveRoot(t *testing.T) {
	s := keyvalue.New(keyvalue.NewMemoryMap())
	_, err := s.Remove(context.Background(), "", true)
	assert.ErrorIs(t, err, drivedav.ErrForbidden)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestStore_WriteReadError(t *testing.T) {
	ctx := context.Background()
	s := keyvalue.New(keyvalue.NewMemoryMap())

	_, err := s.Write(ctx, "broken", failingReader{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = s.Stat(ctx, "broken")
	assert.ErrorIs(t, err, drivedav.ErrNotFound, "failed upload leaves nothing behind")
}
