package clientcli_test

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/clientcli"
	davhttp "github.com/sagarc03/drivedav/http"
	"github.com/sagarc03/drivedav/keyvalue"
	"github.com/sagarc03/drivedav/userbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer starts a WebDAV server over an in-memory tree. A nil users map
// disables authentication.
func newServer(t *testing.T, users map[string]string) *httptest.Server {
	t.Helper()

	gateway, err := drivedav.NewGateway(keyvalue.New(keyvalue.NewMemoryMap()), drivedav.GatewayConfig{})
	require.NoError(t, err)

	cfg := &davhttp.HandlerConfig{}
	if users != nil {
		cfg.Authenticator = drivedav.NewBasicAuthenticator(userbackend.NewMapCredentialStore(users))
	}

	server := httptest.NewServer(davhttp.NewHandler(cfg, gateway).Router())
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, endpoint string) *clientcli.Client {
	t.Helper()

	client, err := clientcli.New(&clientcli.Config{Endpoint: endpoint})
	require.NoError(t, err)
	return client
}

func writeLocal(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := clientcli.New(&clientcli.Config{Endpoint: "localhost:5708"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
	})
}

func TestClient_UploadDownload(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()
	dir := t.TempDir()

	local := writeLocal(t, dir, "hello.txt", "hello world")

	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "docs/greeting.txt"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs/greeting.txt", results[0].RemotePath)
	assert.Equal(t, int64(11), results[0].Size)

	t.Run("to file", func(t *testing.T) {
		target := filepath.Join(dir, "out", "greeting.txt")

		result, reader, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "/docs/greeting.txt", LocalPath: target})
		require.NoError(t, err)
		assert.Nil(t, reader)
		assert.Equal(t, int64(11), result.Size)
		assert.Equal(t, target, result.LocalPath)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("to stdout", func(t *testing.T) {
		result, reader, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "docs/greeting.txt", LocalPath: "-"})
		require.NoError(t, err)
		require.NotNil(t, reader)
		defer func() { _ = reader.Close() }()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "docs/missing.txt", LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("collection", func(t *testing.T) {
		_, _, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "docs", LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})

	t.Run("empty path", func(t *testing.T) {
		_, _, err := client.Download(ctx, clientcli.DownloadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrEmptyPath)
	})
}

func TestClient_UploadIntoCollection(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()

	local := writeLocal(t, t.TempDir(), "photo.jpg", "jpeg")

	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "images/"})
	require.NoError(t, err)
	assert.Equal(t, "images/photo.jpg", results[0].RemotePath)

	t.Run("over a collection", func(t *testing.T) {
		_, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "images"})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})
}

func TestClient_UploadRecursiveAndList(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()
	dir := t.TempDir()

	writeLocal(t, dir, "a.txt", "a")
	writeLocal(t, dir, "sub/b.txt", "bb")
	writeLocal(t, dir, "sub/deeper/c.txt", "ccc")

	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: dir, RemotePath: "site", Recursive: true})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}

	t.Run("one level", func(t *testing.T) {
		result, err := client.List(ctx, clientcli.ListOptions{Path: "site"})
		require.NoError(t, err)

		paths := make([]string, 0, len(result.Items))
		for _, item := range result.Items {
			paths = append(paths, item.Path)
		}
		assert.Equal(t, []string{"site/a.txt", "site/sub"}, paths)
		assert.True(t, result.Items[1].IsDir)
	})

	t.Run("recursive", func(t *testing.T) {
		result, err := client.List(ctx, clientcli.ListOptions{Path: "/site/", Recursive: true})
		require.NoError(t, err)

		paths := make([]string, 0, len(result.Items))
		for _, item := range result.Items {
			paths = append(paths, item.Path)
		}
		assert.Equal(t, []string{
			"site/a.txt",
			"site/sub",
			"site/sub/b.txt",
			"site/sub/deeper",
			"site/sub/deeper/c.txt",
		}, paths)
		assert.Equal(t, int64(6), result.TotalSize())
	})

	t.Run("a file lists itself", func(t *testing.T) {
		result, err := client.List(ctx, clientcli.ListOptions{Path: "site/sub/b.txt"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, int64(2), result.Items[0].Size)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := client.List(ctx, clientcli.ListOptions{Path: "nope"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})
}

func TestClient_Delete(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()

	local := writeLocal(t, t.TempDir(), "f.txt", "x")
	_, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "dir/f.txt"})
	require.NoError(t, err)

	results, err := client.Delete(ctx, clientcli.DeleteOptions{Paths: []string{"dir", "dir/f.txt", "/"}})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Deleted)
	assert.NoError(t, results[0].Err)

	assert.False(t, results[1].Deleted)
	assert.ErrorIs(t, results[1].Err, clientcli.ErrNotFound)

	assert.ErrorIs(t, results[2].Err, clientcli.ErrConflict)
	assert.True(t, clientcli.HasDeleteErrors(results))

	_, err = client.Delete(ctx, clientcli.DeleteOptions{})
	assert.ErrorIs(t, err, clientcli.ErrNoPaths)
}

func TestClient_Mkdir(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Mkdir(ctx, clientcli.MkdirOptions{Path: "a"}))

	t.Run("existing collection conflicts", func(t *testing.T) {
		err := client.Mkdir(ctx, clientcli.MkdirOptions{Path: "a"})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})

	t.Run("missing parent conflicts", func(t *testing.T) {
		err := client.Mkdir(ctx, clientcli.MkdirOptions{Path: "x/y"})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})

	t.Run("parents", func(t *testing.T) {
		require.NoError(t, client.Mkdir(ctx, clientcli.MkdirOptions{Path: "a/b/c", Parents: true}))
		require.NoError(t, client.Mkdir(ctx, clientcli.MkdirOptions{Path: "a/b/c", Parents: true}))

		result, err := client.List(ctx, clientcli.ListOptions{Path: "a", Recursive: true})
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		assert.Equal(t, "a/b/c", result.Items[1].Path)
	})

	t.Run("parents through a file", func(t *testing.T) {
		local := writeLocal(t, t.TempDir(), "f", "x")
		_, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "file"})
		require.NoError(t, err)

		err = client.Mkdir(ctx, clientcli.MkdirOptions{Path: "file/sub", Parents: true})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})
}

func TestClient_CopyMove(t *testing.T) {
	server := newServer(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: writeLocal(t, dir, "a.txt", "A"), RemotePath: "src/a.txt"})
	require.NoError(t, err)
	_, err = client.Upload(ctx, clientcli.UploadOptions{LocalPath: writeLocal(t, dir, "b.txt", "B"), RemotePath: "other.txt"})
	require.NoError(t, err)

	result, err := client.Copy(ctx, clientcli.TransferOptions{Source: "src", Destination: "copy"})
	require.NoError(t, err)
	assert.Equal(t, &clientcli.TransferResult{Operation: "copy", Source: "src", Destination: "copy"}, result)

	_, reader, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "copy/a.txt", LocalPath: "-"})
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))

	t.Run("move without overwrite onto existing", func(t *testing.T) {
		_, err := client.Move(ctx, clientcli.TransferOptions{Source: "src/a.txt", Destination: "other.txt"})
		assert.ErrorIs(t, err, clientcli.ErrPreconditionFailed)
	})

	t.Run("move with overwrite", func(t *testing.T) {
		_, err := client.Move(ctx, clientcli.TransferOptions{Source: "src/a.txt", Destination: "other.txt", Overwrite: true})
		require.NoError(t, err)

		_, err = client.List(ctx, clientcli.ListOptions{Path: "src/a.txt"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("empty paths", func(t *testing.T) {
		_, err := client.Copy(ctx, clientcli.TransferOptions{Source: "src"})
		assert.ErrorIs(t, err, clientcli.ErrEmptyPath)
	})
}

func TestClient_Authentication(t *testing.T) {
	server := newServer(t, map[string]string{"alice": "secret"})
	ctx := context.Background()
	local := writeLocal(t, t.TempDir(), "f.txt", "x")

	t.Run("valid credentials", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Username: "alice", Password: "secret"})
		require.NoError(t, err)
		require.NoError(t, client.Ping(ctx))

		_, err = client.Upload(ctx, clientcli.UploadOptions{LocalPath: local, RemotePath: "f.txt"})
		require.NoError(t, err)

		result, err := client.List(ctx, clientcli.ListOptions{})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "f.txt", result.Items[0].Path)
	})

	t.Run("wrong password", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Username: "alice", Password: "wrong"})
		require.NoError(t, err)

		_, err = client.List(ctx, clientcli.ListOptions{})
		assert.Error(t, err)
		assert.Error(t, client.Ping(ctx))
	})
}

func TestHasDeleteErrors(t *testing.T) {
	assert.False(t, clientcli.HasDeleteErrors(nil))
	assert.False(t, clientcli.HasDeleteErrors([]clientcli.DeleteResult{{Path: "a", Deleted: true}}))
	assert.True(t, clientcli.HasDeleteErrors([]clientcli.DeleteResult{{Path: "a", Err: clientcli.ErrNotFound}}))
}

func TestNormalizeLocalToRemotePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple file", "file.txt", "file.txt"},
		{"with leading dot slash", "./file.txt", "file.txt"},
		{"absolute path", "/abs/path/file.txt", "abs/path/file.txt"},
		{"parent traversal", "../sibling/file.txt", "sibling/file.txt"},
		{"multiple parent traversal", "../../other/file.txt", "other/file.txt"},
		{"mixed traversal", "./foo/../bar/file.txt", "bar/file.txt"},
		{"just dot", ".", ""},
		{"just double dot", "..", ""},
		{"trailing slash directory", "./images/", "images"},
		{"current dir reference", "./foo/./bar/file.txt", "foo/bar/file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.NormalizeLocalToRemotePath(tt.input))
		})
	}
}
