package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these onto HTTP status codes; everything else surfaces as internal_error.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate
	// registration for the same user and event.
	ErrConflict = errors.New("already exists")
	// ErrPreconditionFailed indicates a required precondition is unmet,
	// e.g. registering without an uploaded selfie.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalidInput indicates bad caller input or a malformed response
	// envelope from an upstream provider.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates an upstream provider could not be reached.
	ErrUnavailable = errors.New("service unavailable")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
