package internal_test

import (
	"testing"

	"github.com/sagarc03/drivedav/database/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Testinternal.CheckColumns(t *testing.T) {
	want := map[string]internal.Column{
		"path":    {Type: "text"},
		"content": {Type: "blob", Nullable: true},
	}

	t.Run("match with extra columns", func(t *testing.T) {
		got := map[string]internal.Column{
			"path":    {Type: "text"},
			"content": {Type: "blob", Nullable: true},
			"note":    {Type: "text", Nullable: true},
		}
		assert.NoError(t, internal.CheckColumns("entries", want, got))
	})

	t.Run("reports every problem", func(t *testing.T) {
		got := map[string]internal.Column{
			"content": {Type: "text", Nullable: true},
		}
		err := internal.CheckColumns("entries", want, got)
		require.ErrorIs(t, err, internal.ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "path: missing")
		assert.Contains(t, err.Error(), "content: type text, want blob")
	})

	t.Run("nullability", func(t *testing.T) {
		got := map[string]internal.Column{
			"path":    {Type: "text", Nullable: true},
			"content": {Type: "blob", Nullable: true},
		}
		err := internal.CheckColumns("entries", want, got)
		require.ErrorIs(t, err, internal.ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "path: nullable=true, want false")
	})
}
