package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/drivedav"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB provides SQLite database operations.
type DB struct {
	db     *sql.DB
	tables drivedav.Tables
}

// Connect opens a SQLite database.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables drivedav.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// SQLite serializes writers anyway, and every connection to ":memory:"
	// would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	return &DB{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the entries Repo.
func (d *DB) GetRepo() (*Repo, error) {
	return NewRepo(d.db, d.tables)
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
