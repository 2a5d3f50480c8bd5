// Package database connects the SQL entry stores that back the key-value
// tree.
//
// Each tree node is one row of an entries table keyed by its logical path;
// file content is stored inline. The returned keyvalue.Map is wrapped by
// keyvalue.New to obtain a drivedav.Backend.
//
// # Supported Backends
//
//   - PostgreSQL: shared backend using a pgx connection pool
//   - SQLite: embedded backend suitable for single-node deployments
//
// # Usage
//
//	m, cleanup, err := database.Connect(ctx, database.Config{
//	    Type:  "sqlite",
//	    DSN:   "drivedav.db",
//	    Table: "drivedav_entries",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
//	backend := keyvalue.New(m)
//
// The Connect function automatically:
//   - Opens the database connection
//   - Runs schema migrations
//   - Validates the schema
//   - Returns a ready-to-use keyvalue.Map
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
