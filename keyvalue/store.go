package keyvalue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sagarc03/drivedav"
)

// Store is a drivedav.Backend over a flat Map.
type Store struct {
	m   Map
	now func() time.Time
}

func New(m Map) *Store {
	return &Store{
		m:   m,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Stat(ctx context.Context, p string) (drivedav.Info, error) {
	if p == "" {
		return drivedav.Info{Kind: drivedav.KindCollection}, nil
	}

	rec, err := s.m.Get(ctx, p)
	if err == nil {
		return recordInfo(rec), nil
	}
	if !errors.Is(err, drivedav.ErrNotFound) {
		return drivedav.Info{}, fmt.Errorf("stat: %w", err)
	}

	// Keys below p without a record for p itself still make p a collection.
	children, err := s.m.Scan(ctx, p+"/")
	if err != nil {
		return drivedav.Info{}, fmt.Errorf("stat: %w", err)
	}
	if len(children) == 0 {
		return drivedav.Info{}, fmt.Errorf("stat %q: %w", p, drivedav.ErrNotFound)
	}
	return drivedav.Info{Path: p, Kind: drivedav.KindCollection}, nil
}

func (s *Store) Read(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if p == "" {
		return nil, fmt.Errorf("read: %w: root is a collection", drivedav.ErrNotFound)
	}

	rec, err := s.m.Get(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if rec.Kind != drivedav.KindFile {
		return nil, fmt.Errorf("read %q: %w: not a file", p, drivedav.ErrNotFound)
	}

	content, err := s.m.Load(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nopCloser{bytes.NewReader(content)}, nil
}

func (s *Store) Write(ctx context.Context, p string, content io.Reader) (int64, error) {
	if p == "" {
		return 0, fmt.Errorf("write: %w: root is a collection", drivedav.ErrConflict)
	}

	info, err := s.Stat(ctx, p)
	switch {
	case err == nil && info.IsCollection():
		return 0, fmt.Errorf("write %q: %w: target is a collection", p, drivedav.ErrConflict)
	case err != nil && !errors.Is(err, drivedav.ErrNotFound):
		return 0, fmt.Errorf("write: %w", err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return 0, fmt.Errorf("write %q: read content: %w", p, err)
	}

	if err := s.ensureParents(ctx, drivedav.ParentPath(p)); err != nil {
		return 0, fmt.Errorf("write %q: %w", p, err)
	}

	rec := Record{Key: p, Kind: drivedav.KindFile, Size: int64(len(data)), ModTime: s.now()}
	if err := s.m.Put(ctx, rec, data); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return rec.Size, nil
}

// ensureParents stores a collection record for dir and each missing ancestor.
func (s *Store) ensureParents(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}

	current := ""
	for _, seg := range strings.Split(dir, "/") {
		current = drivedav.JoinPath(current, seg)

		rec, err := s.m.Get(ctx, current)
		switch {
		case err == nil && rec.Kind != drivedav.KindCollection:
			return fmt.Errorf("%w: ancestor %q is a file", drivedav.ErrConflict, current)
		case err == nil:
			continue
		case !errors.Is(err, drivedav.ErrNotFound):
			return err
		}

		if err := s.m.Put(ctx, s.collectionRecord(current), nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, p string, recursive bool) (int, error) {
	if p == "" {
		return 0, fmt.Errorf("remove: %w: cannot remove the root collection", drivedav.ErrForbidden)
	}

	info, err := s.Stat(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("remove: %w", err)
	}

	removed := 0
	var errs []error

	if info.IsCollection() {
		children, err := s.m.Scan(ctx, p+"/")
		if err != nil {
			return 0, fmt.Errorf("remove: %w", err)
		}
		if len(children) > 0 && !recursive {
			return 0, fmt.Errorf("remove %q: %w: collection is not empty", p, drivedav.ErrConflict)
		}

		// Deepest keys first so a failure never orphans a child under a removed parent.
		sort.Slice(children, func(i, j int) bool { return children[i].Key > children[j].Key })
		for _, child := range children {
			if err := s.m.Delete(ctx, child.Key); err != nil && !errors.Is(err, drivedav.ErrNotFound) {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}

	err = s.m.Delete(ctx, p)
	switch {
	case err == nil:
		removed++
	case errors.Is(err, drivedav.ErrNotFound) && info.IsCollection():
		// synthesized collection, nothing stored for p itself
	default:
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("remove %q: %w", p, errors.Join(errs...))
	}
	return removed, nil
}

func (s *Store) List(ctx context.Context, p string) ([]string, error) {
	info, err := s.Stat(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if !info.IsCollection() {
		return nil, fmt.Errorf("list %q: %w: not a collection", p, drivedav.ErrConflict)
	}

	prefix := ""
	if p != "" {
		prefix = p + "/"
	}

	recs, err := s.m.Scan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range recs {
		rest := strings.TrimPrefix(rec.Key, prefix)
		name, _, _ := strings.Cut(rest, "/")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) CreateCollection(ctx context.Context, p string) error {
	if p == "" {
		return fmt.Errorf("create collection: %w: root already exists", drivedav.ErrConflict)
	}

	if _, err := s.Stat(ctx, p); err == nil {
		return fmt.Errorf("create collection %q: %w: already exists", p, drivedav.ErrConflict)
	} else if !errors.Is(err, drivedav.ErrNotFound) {
		return fmt.Errorf("create collection: %w", err)
	}

	parent, err := s.Stat(ctx, drivedav.ParentPath(p))
	if errors.Is(err, drivedav.ErrNotFound) {
		return fmt.Errorf("create collection %q: %w: parent does not exist", p, drivedav.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if !parent.IsCollection() {
		return fmt.Errorf("create collection %q: %w: parent is a file", p, drivedav.ErrConflict)
	}

	if err := s.m.Put(ctx, s.collectionRecord(p), nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (s *Store) collectionRecord(p string) Record {
	return Record{Key: p, Kind: drivedav.KindCollection, ModTime: s.now()}
}

func recordInfo(rec Record) drivedav.Info {
	info := drivedav.Info{Path: rec.Key, Kind: rec.Kind, ModTime: rec.ModTime}
	if rec.Kind == drivedav.KindFile {
		info.Size = rec.Size
	}
	return info
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
