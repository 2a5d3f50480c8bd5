package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/database/postgres"
	"github.com/sagarc03/drivedav/database/sqlite"
	"github.com/sagarc03/drivedav/keyvalue"
)

// Config holds the configuration for connecting to an entries database.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Table is the name of the entries table
	Table string
}

// Connect establishes a connection to the configured database backend,
// runs migrations, validates the schema, and returns a keyvalue.Map.
// The returned cleanup function should be called to close the connection.
func Connect(ctx context.Context, cfg Config) (keyvalue.Map, func(), error) {
	tables := drivedav.Tables{Entries: cfg.Table}
	if err := tables.Validate(); err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, tables)
		if err != nil {
			return nil, nil, err
		}
		return prepare[*sqlite.Repo](ctx, cfg.Type, db)
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, tables)
		if err != nil {
			return nil, nil, err
		}
		return prepare[*postgres.Repo](ctx, cfg.Type, db)
	default:
		return nil, nil, fmt.Errorf("connect database: %w: unsupported type %q", drivedav.ErrInvalidInput, cfg.Type)
	}
}

// entriesDB is the lifecycle shared by the dialect packages.
type entriesDB[R keyvalue.Map] interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() (R, error)
	Close() error
}

// prepare pings, migrates and validates db and returns its entries map.
// db is closed on any failure.
func prepare[R keyvalue.Map](ctx context.Context, name string, db entriesDB[R]) (keyvalue.Map, func(), error) {
	steps := []struct {
		what string
		run  func(context.Context) error
	}{
		{"ping", db.Ping},
		{"migrate", db.Migrate},
		{"validate schema", db.Validate},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("%s %s: %w", step.what, name, err)
		}
	}

	repo, err := db.GetRepo()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create %s repo: %w", name, err)
	}
	return repo, func() { _ = db.Close() }, nil
}
