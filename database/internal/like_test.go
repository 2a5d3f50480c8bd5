package internal_test

import (
	"testing"

	"github.com/sagarc03/drivedav/database/internal"
	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no special characters",
			input:    "simple/path/file.txt",
			expected: "simple/path/file.txt",
		},
		{
			name:     "percent sign",
			input:    "100%complete",
			expected: `100\%complete`,
		},
		{
			name:     "underscore",
			input:    "file_name.txt",
			expected: `file\_name.txt`,
		},
		{
			name:     "backslash",
			input:    `path\to\file`,
			expected: `path\\to\\file`,
		},
		{
			name:     "all special characters",
			input:    `50%_done\today`,
			expected: `50\%\_done\\today`,
		},
		{
			name:     "multiple consecutive special chars",
			input:    "%%__\\\\",
			expected: `\%\%\_\_\\\\`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only special characters",
			input:    `%_\`,
			expected: `\%\_\\`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := internal.EscapeLikePattern(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPrefixUpperBound(t *testing.T) {
	t.Parallel()

	bound, ok := internal.PrefixUpperBound("docs/")
	assert.True(t, ok)
	assert.Equal(t, "docs0", bound)
	assert.Less(t, "docs/zzz", bound)
	assert.Greater(t, "docs0", "docs/\U0010FFFF")

	bound, ok = internal.PrefixUpperBound("a\xff")
	assert.True(t, ok)
	assert.Equal(t, "b", bound)

	_, ok = internal.PrefixUpperBound("")
	assert.False(t, ok)
}
