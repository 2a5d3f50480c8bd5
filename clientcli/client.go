package clientcli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a drivedav server over WebDAV.
type Client struct {
	config *Config
	dav    *gowebdav.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the HTTP transport used for every request.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.dav.SetTransport(transport)
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.dav.SetTimeout(timeout)
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Normalize endpoint URL (remove trailing slash)
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config: &Config{
			Endpoint: endpoint,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		dav: gowebdav.NewClient(endpoint, cfg.Username, cfg.Password),
	}
	c.dav.SetTimeout(DefaultTimeout)

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Ping checks that the server answers WebDAV and that the configured
// credentials are accepted for the root collection.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.dav.Connect(); err != nil {
		return fmt.Errorf("connect: %w", classify(err))
	}
	if _, err := c.dav.Stat("/"); err != nil {
		return fmt.Errorf("stat root: %w", classify(err))
	}
	return nil
}

// Upload uploads file(s) to the server.
// For recursive uploads, walks directory and preserves relative paths.
// The server creates missing parent collections, so no MKCOL is sent.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}

	remotePath := opts.RemotePath
	if remotePath == "" || strings.HasSuffix(remotePath, "/") {
		remotePath += filepath.Base(opts.LocalPath)
	}

	result, err := c.uploadSingle(ctx, opts.LocalPath, remotePath)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		return c.Upload(ctx, UploadOptions{LocalPath: opts.LocalPath, RemotePath: opts.RemotePath})
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remotePrefix := strings.TrimSuffix(opts.RemotePath, "/")

	walkErr := filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		// Check context cancellation
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		// Calculate relative path
		relPath, relErr := filepath.Rel(baseDir, p)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: p,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		// Convert to forward slashes for remote path
		remotePath := path.Join(remotePrefix, filepath.ToSlash(relPath))

		result, uploadErr := c.uploadSingle(ctx, p, remotePath)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath:  p,
				RemotePath: normalizePath(remotePath),
				Err:        uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle uploads a single file to the server. The whole file is
// buffered so the request can be replayed after an authentication
// challenge.
func (c *Client) uploadSingle(ctx context.Context, localPath, remotePath string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}

	data, err := os.ReadFile(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}

	remotePath = normalizePath(remotePath)
	if remotePath == "" {
		return UploadResult{}, fmt.Errorf("upload %s: %w", localPath, ErrEmptyPath)
	}

	if err := c.dav.Write("/"+remotePath, data, 0o644); err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", remotePath, classify(err))
	}

	return UploadResult{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Size:       int64(len(data)),
	}, nil
}

// Download downloads a file from the server.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.RemotePath == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	remotePath := normalizePath(opts.RemotePath)

	info, err := c.dav.Stat("/" + remotePath)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s: %w", remotePath, classify(err))
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("download %s: %w: is a collection", remotePath, ErrConflict)
	}

	result := &DownloadResult{
		RemotePath: remotePath,
		Size:       info.Size(),
	}
	if f, ok := info.(*gowebdav.File); ok {
		result.ContentType = f.ContentType()
	}

	body, err := c.dav.ReadStream("/" + remotePath)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s: %w", remotePath, classify(err))
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, body, nil
	}

	// Determine local path
	localPath := opts.LocalPath
	if localPath == "" {
		// Derive from remote path
		localPath = path.Base(remotePath)
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	// Create the file
	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	// Copy content to file
	written, copyErr := io.Copy(file, body)
	_ = body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Delete deletes one or more entries from the server. Collections are
// removed with everything beneath them.
// Continues on error, collecting results for all paths.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))

	for _, p := range opts.Paths {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(p))
	}

	return results, nil
}

// deleteSingle deletes a single entry. The entry is looked up first since
// a DELETE answered with 404 counts as success for the WebDAV client.
func (c *Client) deleteSingle(p string) DeleteResult {
	remotePath := normalizePath(p)
	if remotePath == "" {
		return DeleteResult{
			Path: p,
			Err:  fmt.Errorf("%w: cannot delete the root collection", ErrConflict),
		}
	}

	if _, err := c.dav.Stat("/" + remotePath); err != nil {
		return DeleteResult{Path: p, Err: classify(err)}
	}

	if err := c.dav.RemoveAll("/" + remotePath); err != nil {
		return DeleteResult{Path: p, Err: classify(err)}
	}

	return DeleteResult{
		Path:    p,
		Deleted: true,
	}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List lists the members of a collection. With opts.Recursive the whole
// subtree is listed. Listing a file returns just that file.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	remotePath := normalizePath(opts.Path)

	info, err := c.dav.Stat("/" + remotePath)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", remotePath, classify(err))
	}
	if !info.IsDir() {
		return &ListResult{Items: []ObjectInfo{objectInfo(remotePath, info)}}, nil
	}

	items, err := c.listDir(ctx, remotePath, opts.Recursive, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return &ListResult{Items: items}, nil
}

func (c *Client) listDir(ctx context.Context, dir string, recursive bool, items []ObjectInfo) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := c.dav.ReadDir("/" + dir)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, classify(err))
	}

	for _, entry := range entries {
		childPath := path.Join(dir, entry.Name())
		items = append(items, objectInfo(childPath, entry))

		if recursive && entry.IsDir() {
			items, err = c.listDir(ctx, childPath, true, items)
			if err != nil {
				return nil, err
			}
		}
	}
	return items, nil
}

// TotalSize calculates the total size of all files in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Size
	}
	return total
}

// Mkdir creates a collection. With opts.Parents, missing ancestors are
// created and an existing collection is not an error.
func (c *Client) Mkdir(ctx context.Context, opts MkdirOptions) error {
	remotePath := normalizePath(opts.Path)
	if remotePath == "" {
		return fmt.Errorf("mkdir: %w", ErrEmptyPath)
	}

	if !opts.Parents {
		if err := c.dav.Mkdir("/"+remotePath, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", remotePath, classify(err))
		}
		return nil
	}

	current := ""
	for _, seg := range strings.Split(remotePath, "/") {
		if err := ctx.Err(); err != nil {
			return err
		}

		current = path.Join(current, seg)
		info, err := c.dav.Stat("/" + current)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			return fmt.Errorf("mkdir %s: %w: %s is a file", remotePath, ErrConflict, current)
		case !gowebdav.IsErrNotFound(err):
			return fmt.Errorf("mkdir %s: %w", remotePath, classify(err))
		}

		if err := c.dav.Mkdir("/"+current, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", current, classify(err))
		}
	}
	return nil
}

// Copy copies a file or a whole collection on the server.
func (c *Client) Copy(ctx context.Context, opts TransferOptions) (*TransferResult, error) {
	return c.transfer(ctx, "copy", opts, c.dav.Copy)
}

// Move renames a file or a whole collection on the server.
func (c *Client) Move(ctx context.Context, opts TransferOptions) (*TransferResult, error) {
	return c.transfer(ctx, "move", opts, c.dav.Rename)
}

func (c *Client) transfer(ctx context.Context, op string, opts TransferOptions, fn func(src, dst string, overwrite bool) error) (*TransferResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := normalizePath(opts.Source)
	dst := normalizePath(opts.Destination)
	if src == "" || dst == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPath)
	}

	if err := fn("/"+src, "/"+dst, opts.Overwrite); err != nil {
		return nil, fmt.Errorf("%s %s to %s: %w", op, src, dst, classify(err))
	}

	return &TransferResult{
		Operation:   op,
		Source:      src,
		Destination: dst,
	}, nil
}

func objectInfo(p string, info os.FileInfo) ObjectInfo {
	obj := ObjectInfo{
		Path:    p,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if f, ok := info.(*gowebdav.File); ok {
		obj.ContentType = f.ContentType()
		obj.ETag = f.ETag()
	}
	if obj.IsDir {
		obj.Size = 0
	}
	return obj
}

// normalizePath strips leading and trailing slashes and collapses
// duplicate ones. The root is "".
func normalizePath(p string) string {
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// NormalizeLocalToRemotePath converts a local path to a clean remote path.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is resolved (../sibling/file.txt -> sibling/file.txt)
//   - Multiple slashes are collapsed
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	// Convert to forward slashes (Windows compatibility)
	p := filepath.ToSlash(localPath)

	// Clean the path (resolves . and .. segments)
	p = path.Clean(p)

	// Strip leading "./"
	p = strings.TrimPrefix(p, "./")

	// Strip leading "/" (absolute paths)
	p = strings.TrimPrefix(p, "/")

	// Keep stripping leading "../" segments
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}

	// Handle edge case where path is just ".." or "."
	if p == ".." || p == "." {
		return ""
	}

	return p
}

// classify maps a WebDAV status error onto the package sentinels. The
// original error is kept in the chain.
func classify(err error) error {
	statuses := []struct {
		code     int
		sentinel error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusConflict, ErrConflict},
		{http.StatusPreconditionFailed, ErrPreconditionFailed},
	}
	for _, s := range statuses {
		if gowebdav.IsErrCode(err, s.code) {
			return fmt.Errorf("%w: %w", s.sentinel, err)
		}
	}
	return err
}
