package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/drivedav"
)

// quoteIdentifier quotes a SQLite identifier, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Migrate creates the entries table if it does not exist. path is the
// primary key, so ordered prefix scans use the table's own index.
func Migrate(ctx context.Context, db *sql.DB, tables drivedav.Tables) error {
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			path TEXT NOT NULL PRIMARY KEY,
			kind TEXT NOT NULL,
			content BLOB,
			size_bytes INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, quoteIdentifier(tables.Entries))

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Entries, err)
	}
	return nil
}

// DropTables removes every table created by Migrate.
func DropTables(ctx context.Context, db *sql.DB, tables drivedav.Tables) error {
	stmt := "DROP TABLE IF EXISTS " + quoteIdentifier(tables.Entries)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Entries, err)
	}
	return nil
}
