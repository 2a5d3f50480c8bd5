// Package sqlite implements keyvalue.Map on a SQLite entries table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/internal"
	"github.com/sagarc03/drivedav/keyvalue"
)

// Repo stores one row per tree node. File content lives in the row.
type Repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo returns a Repo over an already migrated table.
func NewRepo(db *sql.DB, tables drivedav.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &Repo{db: db, tableName: quoteIdentifier(tables.Entries)}, nil
}

func (r *Repo) Get(ctx context.Context, key string) (keyvalue.Record, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT path, kind, size_bytes, updated_at FROM %s WHERE path = ?`, r.tableName)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, drivedav.ErrNotFound)
		}
		return keyvalue.Record{}, fmt.Errorf("get: %w", err)
	}
	return rec, nil
}

func (r *Repo) Load(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT content FROM %s WHERE path = ? AND kind = ?`, r.tableName)

	var content []byte
	err := r.db.QueryRowContext(ctx, query, key, drivedav.KindFile.String()).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load %q: %w", key, drivedav.ErrNotFound)
		}
		return nil, fmt.Errorf("load: %w", err)
	}
	return content, nil
}

func (r *Repo) Put(ctx context.Context, rec keyvalue.Record, content []byte) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (path, kind, content, size_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			kind = excluded.kind,
			content = excluded.content,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at`, r.tableName)

	modTime := rec.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}
	ts := modTime.UTC().Format(time.RFC3339Nano)

	var blob any
	if rec.Kind == drivedav.KindFile {
		if content == nil {
			content = []byte{}
		}
		blob = content
	}

	if _, err := r.db.ExecContext(ctx, query, rec.Key, rec.Kind.String(), blob, rec.Size, ts, ts); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE path = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", key, drivedav.ErrNotFound)
	}
	return nil
}

// Scan pages through matching rows in path order, ScanPageSize at a time.
// The prefix match is a byte-wise range rather than LIKE, which SQLite
// evaluates case-insensitively.
func (r *Repo) Scan(ctx context.Context, prefix string) ([]keyvalue.Record, error) {
	upper, bounded := internal.PrefixUpperBound(prefix)

	var query string
	if bounded {
		query = fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`SELECT path, kind, size_bytes, updated_at
			FROM %s
			WHERE path >= ? AND path < ? AND path > ?
			ORDER BY path
			LIMIT ?`, r.tableName)
	} else {
		query = fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`SELECT path, kind, size_bytes, updated_at
			FROM %s
			WHERE path >= ? AND path > ?
			ORDER BY path
			LIMIT ?`, r.tableName)
	}

	recs := make([]keyvalue.Record, 0)
	after := ""

	for {
		args := []any{prefix}
		if bounded {
			args = append(args, upper)
		}
		args = append(args, after, internal.ScanPageSize)

		page, err := r.scanPage(ctx, query, args)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", prefix, err)
		}
		recs = append(recs, page...)

		if len(page) < internal.ScanPageSize {
			return recs, nil
		}
		after = page[len(page)-1].Key
	}
}

func (r *Repo) scanPage(ctx context.Context, query string, args []any) ([]keyvalue.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	page := make([]keyvalue.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		page = append(page, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (keyvalue.Record, error) {
	var rec keyvalue.Record
	var kind, updatedAt string

	if err := row.Scan(&rec.Key, &kind, &rec.Size, &updatedAt); err != nil {
		return keyvalue.Record{}, err
	}

	var err error
	rec.Kind, err = drivedav.ParseKind(kind)
	if err != nil {
		return keyvalue.Record{}, err
	}

	rec.ModTime, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return keyvalue.Record{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}
