package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/internal"
)

var entriesColumns = map[string]internal.Column{
	"path":       {Type: "text"},
	"kind":       {Type: "text"},
	"content":    {Type: "blob", Nullable: true},
	"size_bytes": {Type: "integer"},
	"created_at": {Type: "text"},
	"updated_at": {Type: "text"},
}

// ValidateSchema checks that the entries table exists with the columns the
// migrations create.
func ValidateSchema(ctx context.Context, db *sql.DB, tables drivedav.Tables) error {
	table := tables.Entries
	if !drivedav.IsValidTableName(table) {
		return fmt.Errorf("validate schema: %w: table name %q", drivedav.ErrInvalidInput, table)
	}

	got, err := tableColumns(ctx, db, table)
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

// tableColumns reads PRAGMA table_info. A missing table yields no rows.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]internal.Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]internal.Column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = internal.Column{Type: strings.ToLower(dataType), Nullable: notNull == 0}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	return cols, nil
}
