package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/internal"
)

var entriesColumns = map[string]internal.Column{
	"path":       {Type: "text"},
	"kind":       {Type: "text"},
	"content":    {Type: "bytea", Nullable: true},
	"size_bytes": {Type: "bigint"},
	"created_at": {Type: "timestamp with time zone"},
	"updated_at": {Type: "timestamp with time zone"},
}

// ValidateSchema checks that the entries table exists in the public schema
// with the columns the migrations create.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables drivedav.Tables) error {
	table := tables.Entries
	if !drivedav.IsValidTableName(table) {
		return fmt.Errorf("validate schema: %w: table name %q", drivedav.ErrInvalidInput, table)
	}

	got, err := tableColumns(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	if len(got) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", table)
	}
	if err := internal.CheckColumns(table, entriesColumns, got); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (map[string]internal.Column, error) {
	const query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`

	rows, err := pool.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]internal.Column)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = internal.Column{Type: strings.ToLower(dataType), Nullable: nullable == "YES"}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	return cols, nil
}
