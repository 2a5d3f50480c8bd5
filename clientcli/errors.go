package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrConfigRequired   = errors.New("config is required")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
)

// Errors for input validation.
var (
	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyPath = errors.New("path is required")
)

// Errors reported by the server, matched with errors.Is.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when authentication fails (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the identity may not use the path (403).
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned for structural violations such as creating a
	// collection that already exists (409).
	ErrConflict = errors.New("conflict")

	// ErrPreconditionFailed is returned when a copy or move would overwrite
	// an existing destination without permission (412).
	ErrPreconditionFailed = errors.New("destination exists")
)
