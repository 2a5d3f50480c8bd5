package keyvalue_test

import (
	"context"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/keyvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMap(t *testing.T) {
	ctx := context.Background()
	m := keyvalue.NewMemoryMap()

	_, err := m.Get(ctx, "x")
	assert.ErrorIs(t, err, drivedav.ErrNotFound)

	require.NoError(t, m.Put(ctx, keyvalue.Record{Key: "b", Kind: drivedav.KindFile, Size: 1}, []byte("1")))
	require.NoError(t, m.Put(ctx, keyvalue.Record{Key: "a", Kind: drivedav.KindCollection}, nil))
	require.NoError(t, m.Put(ctx, keyvalue.Record{Key: "a/c", Kind: drivedav.KindFile, Size: 1}, []byte("2")))

	recs, err := m.Scan(ctx, "")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "a", recs[0].Key)
	assert.Equal(t, "a/c", recs[1].Key)
	assert.Equal(t, "b", recs[2].Key)

	recs, err = m.Scan(ctx, "a/")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	data, err := m.Load(ctx, "a/c")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))

	_, err = m.Load(ctx, "a")
	assert.ErrorIs(t, err, drivedav.ErrNotFound, "collections carry no content")

	require.NoError(t, m.Delete(ctx, "b"))
	assert.ErrorIs(t, m.Delete(ctx, "b"), drivedav.ErrNotFound)
}

func TestMemoryMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := keyvalue.NewMemoryMap().Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
