package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/drivedav"
)

// createEntriesTable creates the entries table. path uses the "C" collation
// so ordering, keyset paging and prefix LIKE all compare bytes.
func createEntriesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			path TEXT COLLATE "C" PRIMARY KEY,
			kind TEXT NOT NULL,
			content BYTEA,
			size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	return nil
}

func dropTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{tableName}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	return nil
}

// Migrate creates every table the entries store needs.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables drivedav.Tables) error {
	if err := createEntriesTable(ctx, pool, tables.Entries); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Entries, err)
	}
	return nil
}

// DropTables removes every table created by Migrate.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables drivedav.Tables) error {
	if err := dropTable(ctx, pool, tables.Entries); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Entries, err)
	}
	return nil
}
