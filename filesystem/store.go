// Package filesystem provides a directory-backed drivedav.Backend.
// All access goes through an os.Root, so no logical path can reach outside
// the configured directory. Writes are atomic: content lands in a temp file
// that is renamed into place once fully written.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sagarc03/drivedav"
)

const tmpPrefix = ".drivedav-tmp-"

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewStore creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// name converts a logical path into a name relative to the root.
func name(p string) string {
	if p == "" {
		return "."
	}
	return filepath.FromSlash(p)
}

// fsName converts a logical path into an io/fs name for s.root.FS().
func fsName(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func (s *Store) Stat(ctx context.Context, p string) (drivedav.Info, error) {
	if err := ctx.Err(); err != nil {
		return drivedav.Info{}, err
	}

	if isReserved(p) {
		return drivedav.Info{}, fmt.Errorf("stat %q: %w", p, drivedav.ErrNotFound)
	}

	fi, err := s.root.Stat(name(p))
	if err != nil {
		return drivedav.Info{}, fmt.Errorf("stat %q: %w", p, mapError(err))
	}
	return fileInfo(p, fi), nil
}

// Read opens a file for reading. Returns drivedav.ErrNotFound if the file
// does not exist or is a directory.
func (s *Store) Read(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isReserved(p) {
		return nil, fmt.Errorf("read %q: %w", p, drivedav.ErrNotFound)
	}

	f, err := s.root.Open(name(p))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", p, mapError(err))
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read %q: %w", p, err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("read %q: %w: is a directory", p, drivedav.ErrNotFound)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to p using a temp file and rename.
// It creates intermediate directories as needed. The operation respects
// context cancellation.
func (s *Store) Write(ctx context.Context, p string, content io.Reader) (int64, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	if p == "" {
		return 0, fmt.Errorf("write: %w: root is a directory", drivedav.ErrConflict)
	}
	if isReserved(p) {
		return 0, fmt.Errorf("write %q: %w: reserved name", p, drivedav.ErrForbidden)
	}

	if fi, err := s.root.Stat(name(p)); err == nil && fi.IsDir() {
		return 0, fmt.Errorf("write %q: %w: target is a directory", p, drivedav.ErrConflict)
	}

	destDir := filepath.Dir(name(p))
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, os.ErrExist) {
				return 0, fmt.Errorf("write %q: %w: ancestor is a file", p, drivedav.ErrConflict)
			}
			return 0, fmt.Errorf("write %q: create intermediate directories: %w", p, err)
		}
	}

	// The temp file lives next to its destination so the rename never
	// crosses a filesystem boundary.
	tmpFile := filepath.Join(destDir, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, fmt.Errorf("write %q: open temp file: %w", p, createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	written, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("write %q: copy contents: %w", p, err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("write %q: sync: %w", p, err)
	}

	if err := s.root.Rename(tmpFile, name(p)); err != nil {
		return 0, fmt.Errorf("write %q: rename: %w", p, mapError(err))
	}

	success = true
	return written, nil
}

// Remove deletes p. Directories are only removed when empty unless
// recursive is set, in which case every descendant is removed first.
func (s *Store) Remove(ctx context.Context, p string, recursive bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if p == "" {
		return 0, fmt.Errorf("remove: %w: cannot remove the root directory", drivedav.ErrForbidden)
	}

	fi, err := s.root.Lstat(name(p))
	if err != nil {
		return 0, fmt.Errorf("remove %q: %w", p, mapError(err))
	}

	if fi.IsDir() && recursive {
		n, err := s.removeTree(ctx, p)
		if err != nil {
			return n, fmt.Errorf("remove %q: %w", p, err)
		}
		return n, nil
	}

	if err := s.root.Remove(name(p)); err != nil {
		return 0, fmt.Errorf("remove %q: %w", p, mapError(err))
	}
	return 1, nil
}

// removeTree removes a directory depth-first and counts every entry it
// removed. A failing entry does not stop its siblings.
func (s *Store) removeTree(ctx context.Context, p string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries, err := fs.ReadDir(s.root.FS(), fsName(p))
	if err != nil {
		return 0, mapError(err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		child := drivedav.JoinPath(p, entry.Name())
		if entry.IsDir() {
			n, err := s.removeTree(ctx, child)
			removed += n
			if err != nil {
				errs = append(errs, err)
			}
			continue
		}

		if err := s.root.Remove(name(child)); err != nil {
			errs = append(errs, err)
			continue
		}
		if !isTempName(entry.Name()) {
			removed++
		}
	}

	if err := s.root.Remove(name(p)); err != nil {
		errs = append(errs, err)
	} else {
		removed++
	}

	return removed, errors.Join(errs...)
}

// List returns the names of the entries in directory p, skipping in-flight
// temp files.
func (s *Store) List(ctx context.Context, p string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fi, err := s.root.Stat(name(p))
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p, mapError(err))
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("list %q: %w: not a directory", p, drivedav.ErrConflict)
	}

	entries, err := fs.ReadDir(s.root.FS(), fsName(p))
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p, mapError(err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isTempName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// CreateCollection creates a single directory. Its parent must exist.
func (s *Store) CreateCollection(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p == "" {
		return fmt.Errorf("create collection: %w: root already exists", drivedav.ErrConflict)
	}
	if isReserved(p) {
		return fmt.Errorf("create collection %q: %w: reserved name", p, drivedav.ErrForbidden)
	}

	if err := s.root.Mkdir(name(p), 0o755); err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("create collection %q: %w: parent does not exist", p, drivedav.ErrConflict)
		case errors.Is(err, syscall.ENOTDIR):
			return fmt.Errorf("create collection %q: %w: parent is a file", p, drivedav.ErrConflict)
		}
		return fmt.Errorf("create collection %q: %w", p, mapError(err))
	}
	return nil
}

// mapError translates OS errors into drivedav sentinels. ENOTDIR means a
// path component is a file, so the path cannot exist.
func mapError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%w: %w", drivedav.ErrNotFound, err)
	case errors.Is(err, os.ErrExist), errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EISDIR):
		return fmt.Errorf("%w: %w", drivedav.ErrConflict, err)
	default:
		return err
	}
}

func fileInfo(p string, fi os.FileInfo) drivedav.Info {
	info := drivedav.Info{Path: p, ModTime: fi.ModTime().UTC()}
	if fi.IsDir() {
		info.Kind = drivedav.KindCollection
	} else {
		info.Kind = drivedav.KindFile
		info.Size = fi.Size()
	}
	return info
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}

func isTempName(n string) bool {
	return strings.HasPrefix(n, tmpPrefix)
}

// isReserved reports whether any segment of p uses the temp file prefix.
// Such names belong to the store and are never visible to clients.
func isReserved(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if isTempName(seg) {
			return true
		}
	}
	return false
}
