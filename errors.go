package drivedav

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the tree shape forbids an operation
	ErrConflict = errors.New("conflict")
	// ErrPreconditionFailed is returned when a COPY or MOVE would overwrite
	// an existing destination and overwriting was not allowed
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrBadRequest is returned when a request header or body is malformed
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned for operations that are never allowed
	ErrForbidden = errors.New("forbidden")
	// ErrUnsupportedMediaType is returned when a request carries a body the verb does not accept
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPathEscapesRoot is returned when a ".." segment would climb above the root
	ErrPathEscapesRoot = fmt.Errorf("%w: path escapes root", ErrBadRequest)
)
