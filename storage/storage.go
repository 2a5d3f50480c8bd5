// Package storage builds the configured drivedav.Backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/badgerkv"
	"github.com/sagarc03/drivedav/database"
	"github.com/sagarc03/drivedav/filesystem"
	"github.com/sagarc03/drivedav/keyvalue"
	"github.com/sagarc03/drivedav/s3kv"
)

// Backend types accepted by Config.Type.
const (
	TypeFilesystem = "filesystem"
	TypeMemory     = "memory"
	TypeSQLite     = "sqlite"
	TypePostgres   = "postgres"
	TypeBadger     = "badger"
	TypeS3         = "s3"
)

// Config selects and configures one backend. Only the fields of the chosen
// type are read.
type Config struct {
	Type   string          `mapstructure:"type" validate:"required,oneof=filesystem memory sqlite postgres badger s3"`
	Path   string          `mapstructure:"path" validate:"required_if=Type filesystem"`
	DSN    string          `mapstructure:"dsn" validate:"required_if=Type sqlite,required_if=Type postgres"`
	Table  string          `mapstructure:"table" validate:"required_if=Type sqlite,required_if=Type postgres"`
	Badger badgerkv.Config `mapstructure:"badger"`
	S3     s3kv.Config     `mapstructure:"s3"`
}

// Open returns the backend described by cfg and a cleanup function that
// releases it. cleanup is never nil when err is nil.
func Open(ctx context.Context, cfg Config) (drivedav.Backend, func(), error) {
	switch cfg.Type {
	case TypeFilesystem:
		return openFilesystem(cfg.Path)

	case TypeMemory:
		return keyvalue.New(keyvalue.NewMemoryMap()), func() {}, nil

	case TypeSQLite, TypePostgres:
		m, cleanup, err := database.Connect(ctx, database.Config{Type: cfg.Type, DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, nil, err
		}
		return keyvalue.New(m), cleanup, nil

	case TypeBadger:
		m, err := badgerkv.Open(cfg.Badger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := m.Close(); err != nil {
				slog.Warn("close badger", "err", err)
			}
		}
		return keyvalue.New(m), cleanup, nil

	case TypeS3:
		m, err := s3kv.Open(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return keyvalue.New(m), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unsupported storage type %q", drivedav.ErrInvalidInput, cfg.Type)
	}
}

func openFilesystem(path string) (drivedav.Backend, func(), error) {
	if path == "" {
		return nil, nil, fmt.Errorf("%w: storage path is required", drivedav.ErrInvalidInput)
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	cleanup := func() {
		_ = root.Close()
	}
	return filesystem.NewStore(root), cleanup, nil
}
