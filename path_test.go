package drivedav_test

import (
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "root", raw: "/", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "simple file", raw: "/file.txt", want: "file.txt"},
		{name: "nested", raw: "/a/b/c.txt", want: "a/b/c.txt"},
		{name: "trailing slash", raw: "/docs/", want: "docs"},
		{name: "double slashes", raw: "//a///b//", want: "a/b"},
		{name: "dot segments", raw: "/./a/./b/.", want: "a/b"},
		{name: "dot dot inside", raw: "/a/b/../c", want: "a/c"},
		{name: "dot dot back to root", raw: "/a/..", want: ""},
		{name: "percent encoded space", raw: "/My%20Documents/a%20b.txt", want: "My Documents/a b.txt"},
		{name: "percent encoded unicode", raw: "/r%C3%A9sum%C3%A9.pdf", want: "résumé.pdf"},
		{name: "literal space", raw: "/a b", want: "a b"},
		{name: "plus stays plus", raw: "/a+b", want: "a+b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := drivedav.ResolvePath(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePath_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		escape bool
	}{
		{name: "escape root", raw: "/..", escape: true},
		{name: "escape after pop", raw: "/a/../..", escape: true},
		{name: "escape to etc", raw: "/../../etc/passwd", escape: true},
		{name: "encoded escape", raw: "/%2e%2e/secret", escape: true},
		{name: "encoded slash escape", raw: "/a%2f..%2f..%2fsecret", escape: true},
		{name: "malformed escape", raw: "/a%zz"},
		{name: "nul byte", raw: "/a%00b"},
		{name: "control character", raw: "/a%0Ab"},
		{name: "backslash", raw: "/a%5Cb"},
		{name: "del", raw: "/a%7Fb"},
		{name: "invalid utf-8", raw: "/%ff%fe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := drivedav.ResolvePath(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, drivedav.ErrBadRequest)
			if tt.escape {
				assert.ErrorIs(t, err, drivedav.ErrPathEscapesRoot)
			}
		})
	}
}

func TestResolvePath_Idempotent(t *testing.T) {
	for _, raw := range []string{"/a/b", "/x/./y/../z", "/My%20Docs/"} {
		once, err := drivedav.ResolvePath(raw)
		require.NoError(t, err)
		twice, err := drivedav.ResolvePath(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, raw)
	}
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a/b/c", drivedav.JoinPath("a", "", "b/", "/c"))
	assert.Equal(t, "", drivedav.JoinPath("", ""))

	assert.Equal(t, "a/b", drivedav.ParentPath("a/b/c"))
	assert.Equal(t, "", drivedav.ParentPath("a"))
	assert.Equal(t, "", drivedav.ParentPath(""))

	assert.Equal(t, "c", drivedav.BaseName("a/b/c"))
	assert.Equal(t, "a", drivedav.BaseName("a"))
	assert.Equal(t, "", drivedav.BaseName(""))

	assert.True(t, drivedav.IsWithin("a/b", "a"))
	assert.True(t, drivedav.IsWithin("a", ""))
	assert.False(t, drivedav.IsWithin("a", "a"))
	assert.False(t, drivedav.IsWithin("ab", "a"))
	assert.False(t, drivedav.IsWithin("", ""))

	assert.Equal(t, "alice/docs", drivedav.ScopePath("alice", "docs"))
	assert.Equal(t, "alice", drivedav.ScopePath("alice", ""))
	assert.Equal(t, "docs", drivedav.ScopePath("", "docs"))

	assert.Equal(t, "docs", drivedav.UnscopePath("alice", "alice/docs"))
	assert.Equal(t, "", drivedav.UnscopePath("alice", "alice"))
	assert.Equal(t, "docs", drivedav.UnscopePath("", "docs"))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, drivedav.IsValidName("alice"))
	assert.True(t, drivedav.IsValidName("bob smith"))
	assert.False(t, drivedav.IsValidName(""))
	assert.False(t, drivedav.IsValidName("."))
	assert.False(t, drivedav.IsValidName(".."))
	assert.False(t, drivedav.IsValidName("a/b"))
	assert.False(t, drivedav.IsValidName("a\\b"))
	assert.False(t, drivedav.IsValidName("a\x00"))
}
