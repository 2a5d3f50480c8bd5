package drivedav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Gateway maps WebDAV operations onto a Backend. It owns every verb
// precondition (existence, kind, parent shape, overwrite rules) so that
// backends only need the primitive operations.
//
// Gateway performs no locking. Concurrent requests on overlapping paths see
// whatever interleaving the backend produces.
type Gateway struct {
	backend        Backend
	cleanupTimeout time.Duration
}

// GatewayConfig holds configuration options for Gateway.
type GatewayConfig struct {
	CleanupTimeout time.Duration // Timeout for MOVE rollback after a failed copy (default: 30s)
}

// CopyOptions controls a COPY.
type CopyOptions struct {
	Overwrite bool
	// Depth is DepthZero to copy a collection without its members; any
	// other value copies the whole subtree.
	Depth Depth
}

func NewGateway(backend Backend, cfg GatewayConfig) (*Gateway, error) {
	if backend == nil {
		return nil, errors.New("new gateway: backend cannot be nil")
	}
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	return &Gateway{
		backend:        backend,
		cleanupTimeout: cleanupTimeout,
	}, nil
}

// Stat describes the node at p.
func (g *Gateway) Stat(ctx context.Context, p string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, fmt.Errorf("stat: %w", err)
	}

	info, err := g.backend.Stat(ctx, p)
	if err != nil {
		return Info{}, fmt.Errorf("stat %q: %w", p, err)
	}
	info.Path = p
	return info, nil
}

// Get opens the file at p. Collections are not readable and report
// ErrNotFound, as the backend's Read does.
//
// The caller is responsible for closing the returned reader.
func (g *Gateway) Get(ctx context.Context, p string) (Info, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, nil, fmt.Errorf("get: %w", err)
	}

	content, err := g.backend.Read(ctx, p)
	if err != nil {
		return Info{}, nil, fmt.Errorf("get %q: %w", p, err)
	}

	info, err := g.backend.Stat(ctx, p)
	if err != nil {
		_ = content.Close()
		return Info{}, nil, fmt.Errorf("get %q: %w", p, err)
	}
	info.Path = p

	return info, content, nil
}

// Put stores body as the file at p and reports whether the file was newly
// created (as opposed to replacing an existing file).
//
// Error types returned:
//   - ErrConflict: p is the root or a collection, or an ancestor is a file
//   - Wrapped backend errors, including errors from reading body
func (g *Gateway) Put(ctx context.Context, p string, body io.Reader) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("put: %w", err)
	}

	if p == "" {
		return false, fmt.Errorf("put: %w: cannot overwrite the root collection", ErrConflict)
	}

	created := false
	info, err := g.backend.Stat(ctx, p)
	switch {
	case errors.Is(err, ErrNotFound):
		created = true
	case err != nil:
		return false, fmt.Errorf("put %q: %w", p, err)
	case info.IsCollection():
		return false, fmt.Errorf("put %q: %w: target is a collection", p, ErrConflict)
	}

	if _, err := g.backend.Write(ctx, p, body); err != nil {
		return false, fmt.Errorf("put %q: %w", p, err)
	}

	return created, nil
}

// Delete removes p and, for a collection, everything below it. It returns the
// number of nodes the backend confirmed removed.
func (g *Gateway) Delete(ctx context.Context, p string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}

	if p == "" {
		return 0, fmt.Errorf("delete: %w: cannot delete the root collection", ErrForbidden)
	}

	if _, err := g.backend.Stat(ctx, p); err != nil {
		return 0, fmt.Errorf("delete %q: %w", p, err)
	}

	n, err := g.backend.Remove(ctx, p, true)
	if err != nil {
		return n, fmt.Errorf("delete %q: %w", p, err)
	}
	return n, nil
}

// Mkcol creates a single collection. It does not create ancestors and is
// not idempotent: an existing node of either kind is a conflict.
func (g *Gateway) Mkcol(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mkcol: %w", err)
	}

	if p == "" {
		return fmt.Errorf("mkcol: %w: root collection already exists", ErrConflict)
	}

	_, err := g.backend.Stat(ctx, p)
	switch {
	case err == nil:
		return fmt.Errorf("mkcol %q: %w: already exists", p, ErrConflict)
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("mkcol %q: %w", p, err)
	}

	if err := g.requireCollection(ctx, ParentPath(p)); err != nil {
		return fmt.Errorf("mkcol %q: %w", p, err)
	}

	if err := g.backend.CreateCollection(ctx, p); err != nil {
		return fmt.Errorf("mkcol %q: %w", p, err)
	}
	return nil
}

// EnsureCollection creates p and any missing ancestors. Existing collections
// are left alone; a file anywhere along the way is a conflict.
func (g *Gateway) EnsureCollection(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	current := ""
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		current = JoinPath(current, seg)

		info, err := g.backend.Stat(ctx, current)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := g.backend.CreateCollection(ctx, current); err != nil && !errors.Is(err, ErrConflict) {
				return fmt.Errorf("ensure collection %q: %w", current, err)
			}
		case err != nil:
			return fmt.Errorf("ensure collection %q: %w", current, err)
		case !info.IsCollection():
			return fmt.Errorf("ensure collection %q: %w: path is a file", current, ErrConflict)
		}
	}
	return nil
}

// Copy duplicates src at dst and reports whether dst was newly created.
//
// Error types returned:
//   - ErrNotFound: src does not exist
//   - ErrForbidden: src and dst are the same, one contains the other, or
//     either is the root
//   - ErrPreconditionFailed: dst exists and opts.Overwrite is false
//   - ErrConflict: the parent of dst is missing or is a file
//
// An existing dst is removed before copying. Copying a collection is
// best-effort per member; the returned error joins every member failure.
func (g *Gateway) Copy(ctx context.Context, src, dst string, opts CopyOptions) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("copy: %w", err)
	}

	srcInfo, existed, err := g.prepareTransfer(ctx, src, dst, opts.Overwrite)
	if err != nil {
		return false, fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}

	if err := g.copyTree(ctx, srcInfo, dst, opts.Depth); err != nil {
		return false, fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}

	return !existed, nil
}

// Move relocates src to dst and reports whether dst was newly created. It
// follows the rules of Copy with a full-depth copy. The source is removed
// only once the copy has fully succeeded; otherwise the partially written
// destination is removed and the source is left untouched.
func (g *Gateway) Move(ctx context.Context, src, dst string, overwrite bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("move: %w", err)
	}

	srcInfo, existed, err := g.prepareTransfer(ctx, src, dst, overwrite)
	if err != nil {
		return false, fmt.Errorf("move %q to %q: %w", src, dst, err)
	}

	if err := g.copyTree(ctx, srcInfo, dst, DepthInfinity); err != nil {
		// Use background context for cleanup since original context may be cancelled
		cleanupCtx, cancel := context.WithTimeout(context.Background(), g.cleanupTimeout)
		defer cancel()

		if _, rmErr := g.backend.Remove(cleanupCtx, dst, true); rmErr != nil && !errors.Is(rmErr, ErrNotFound) {
			slog.Warn("move rollback failed", "src", src, "dst", dst, "error", rmErr)
		}
		return false, fmt.Errorf("move %q to %q: %w", src, dst, err)
	}

	if _, err := g.backend.Remove(ctx, src, true); err != nil {
		return false, fmt.Errorf("move %q to %q: remove source: %w", src, dst, err)
	}

	return !existed, nil
}

// prepareTransfer checks every COPY/MOVE precondition and clears an existing
// destination. It returns the source info and whether dst existed.
func (g *Gateway) prepareTransfer(ctx context.Context, src, dst string, overwrite bool) (Info, bool, error) {
	if src == "" || dst == "" {
		return Info{}, false, fmt.Errorf("%w: root collection cannot be copied, moved or replaced", ErrForbidden)
	}

	srcInfo, err := g.backend.Stat(ctx, src)
	if err != nil {
		return Info{}, false, err
	}
	srcInfo.Path = src

	if src == dst {
		return Info{}, false, fmt.Errorf("%w: source and destination are the same", ErrForbidden)
	}
	if IsWithin(dst, src) || IsWithin(src, dst) {
		return Info{}, false, fmt.Errorf("%w: source and destination overlap", ErrForbidden)
	}

	existed := true
	_, err = g.backend.Stat(ctx, dst)
	switch {
	case errors.Is(err, ErrNotFound):
		existed = false
	case err != nil:
		return Info{}, false, err
	case !overwrite:
		return Info{}, false, fmt.Errorf("%w: destination exists", ErrPreconditionFailed)
	}

	if err := g.requireCollection(ctx, ParentPath(dst)); err != nil {
		return Info{}, false, err
	}

	if existed {
		if _, err := g.backend.Remove(ctx, dst, true); err != nil {
			return Info{}, false, fmt.Errorf("replace destination: %w", err)
		}
	}

	return srcInfo, existed, nil
}

func (g *Gateway) copyTree(ctx context.Context, src Info, dst string, depth Depth) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !src.IsCollection() {
		return g.copyFile(ctx, src.Path, dst)
	}

	if err := g.backend.CreateCollection(ctx, dst); err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	if depth == DepthZero {
		return nil
	}

	names, err := g.backend.List(ctx, src.Path)
	if err != nil {
		return fmt.Errorf("list %q: %w", src.Path, err)
	}

	var errs []error
	for _, name := range names {
		child, err := g.backend.Stat(ctx, JoinPath(src.Path, name))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		child.Path = JoinPath(src.Path, name)

		if err := g.copyTree(ctx, child, JoinPath(dst, name), depth); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Gateway) copyFile(ctx context.Context, src, dst string) error {
	content, err := g.backend.Read(ctx, src)
	if err != nil {
		return fmt.Errorf("read %q: %w", src, err)
	}
	defer func() { _ = content.Close() }()

	if _, err := g.backend.Write(ctx, dst, content); err != nil {
		return fmt.Errorf("write %q: %w", dst, err)
	}
	return nil
}

// requireCollection returns ErrConflict unless p exists and is a collection.
func (g *Gateway) requireCollection(ctx context.Context, p string) error {
	info, err := g.backend.Stat(ctx, p)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: parent %q does not exist", ErrConflict, p)
	}
	if err != nil {
		return err
	}
	if !info.IsCollection() {
		return fmt.Errorf("%w: parent %q is not a collection", ErrConflict, p)
	}
	return nil
}

// Propfind enumerates p and, depending on depth, its descendants. The
// target comes first; children of each collection follow in name order,
// depth-first. A child removed between listing and stat is skipped.
func (g *Gateway) Propfind(ctx context.Context, p string, depth Depth) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("propfind: %w", err)
	}

	info, err := g.backend.Stat(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("propfind %q: %w", p, err)
	}
	info.Path = p

	entries := []Info{info}
	if depth == DepthZero || !info.IsCollection() {
		return entries, nil
	}

	entries, err = g.walk(ctx, p, depth, entries)
	if err != nil {
		return nil, fmt.Errorf("propfind %q: %w", p, err)
	}
	return entries, nil
}

func (g *Gateway) walk(ctx context.Context, dir string, depth Depth, entries []Info) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := g.backend.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}
	sort.Strings(names)

	for _, name := range names {
		child := JoinPath(dir, name)
		info, err := g.backend.Stat(ctx, child)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		info.Path = child
		entries = append(entries, info)

		if depth == DepthInfinity && info.IsCollection() {
			sub, err := g.walk(ctx, child, depth, entries)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			entries = sub
		}
	}
	return entries, nil
}
