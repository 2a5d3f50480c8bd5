// Package config provides configuration loading and validation for drivedav.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DRIVEDAV_ prefix, plus PORT)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with DRIVEDAV_ prefix:
//   - server.port → DRIVEDAV_SERVER_PORT (PORT is accepted as a fallback)
//   - storage.type → DRIVEDAV_STORAGE_TYPE
//   - storage.s3.bucket → DRIVEDAV_STORAGE_S3_BUCKET
//   - auth.enabled → DRIVEDAV_AUTH_ENABLED
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (colored text logs) or prod (JSON logs)
//   - Server: port, metrics_port, max_upload_size and timeouts
//   - Service: cleanup_timeout for MOVE rollback
//   - Storage: backend type and its settings (filesystem, memory, sqlite,
//     postgres, badger, s3)
//   - Auth: Basic auth switch, realm, per-user roots and users
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Ports must be 1-65535 (metrics_port may be 0 to disable it)
//   - Storage type must be one of the supported backends, and the fields
//     that backend needs must be set
//   - Log level must be debug, info, warn, or error
package config
