// Package postgres implements keyvalue.Map on a PostgreSQL entries table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/internal"
	"github.com/sagarc03/drivedav/keyvalue"
)

// Repo stores one row per tree node. File content lives in the row.
type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables drivedav.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Entries}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Get(ctx context.Context, key string) (keyvalue.Record, error) {
	query := fmt.Sprintf(`
		SELECT path, kind, size_bytes, updated_at
		FROM %s
		WHERE path = $1
	`, r.tableName)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, drivedav.ErrNotFound)
		}
		return keyvalue.Record{}, fmt.Errorf("get: %w", err)
	}
	return rec, nil
}

func (r *Repo) Load(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`
		SELECT content
		FROM %s
		WHERE path = $1 AND kind = $2
	`, r.tableName)

	var content []byte
	err := r.pool.QueryRow(ctx, query, key, drivedav.KindFile.String()).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load %q: %w", key, drivedav.ErrNotFound)
		}
		return nil, fmt.Errorf("load: %w", err)
	}
	return content, nil
}

func (r *Repo) Put(ctx context.Context, rec keyvalue.Record, content []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (path, kind, content, size_bytes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (path) DO UPDATE
		SET kind = EXCLUDED.kind,
			content = EXCLUDED.content,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = EXCLUDED.updated_at
	`, r.tableName)

	modTime := rec.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}

	var blob []byte
	if rec.Kind == drivedav.KindFile {
		blob = content
		if blob == nil {
			blob = []byte{}
		}
	}

	if _, err := r.pool.Exec(ctx, query, rec.Key, rec.Kind.String(), blob, rec.Size, modTime.UTC()); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE path = $1
	`, r.tableName)

	result, err := r.pool.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete %q: %w", key, drivedav.ErrNotFound)
	}

	return nil
}

// Scan pages through matching rows in path order, ScanPageSize at a time,
// using the last path of each page as the keyset cursor.
func (r *Repo) Scan(ctx context.Context, prefix string) ([]keyvalue.Record, error) {
	escapedPrefix := internal.EscapeLikePattern(prefix)

	query := fmt.Sprintf(`
		SELECT path, kind, size_bytes, updated_at
		FROM %s
		WHERE path LIKE $1 || '%%' AND path > $2
		ORDER BY path
		LIMIT $3
	`, r.tableName)

	recs := make([]keyvalue.Record, 0)
	after := ""

	for {
		rows, err := r.pool.Query(ctx, query, escapedPrefix, after, internal.ScanPageSize)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		page, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (keyvalue.Record, error) {
			return scanRecord(row)
		})
		if err != nil {
			return nil, fmt.Errorf("scan: rows: %w", err)
		}
		recs = append(recs, page...)

		if len(page) < internal.ScanPageSize {
			return recs, nil
		}
		after = page[len(page)-1].Key
	}
}

func scanRecord(row pgx.Row) (keyvalue.Record, error) {
	var rec keyvalue.Record
	var kind string

	if err := row.Scan(&rec.Key, &kind, &rec.Size, &rec.ModTime); err != nil {
		return keyvalue.Record{}, err
	}

	var err error
	rec.Kind, err = drivedav.ParseKind(kind)
	if err != nil {
		return keyvalue.Record{}, err
	}
	return rec, nil
}
