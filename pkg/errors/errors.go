package errors

import "errors"

var (
	// Registration validation failures. The registry is left untouched
	// when any of these are returned.
	ErrMissingEndpoint = errors.New("server endpoint is required")
	ErrMissingOwner    = errors.New("server owner is required")
	ErrNoTools         = errors.New("server must expose at least one tool")

	// ErrUnreachable means the registration-time health probe failed.
	ErrUnreachable = errors.New("server endpoint is unreachable")

	ErrNotFound = errors.New("not found")

	ErrEmptyKey     = errors.New("empty key")
	ErrEntityExists = errors.New("entity already exists")
	ErrInvalidData  = errors.New("invalid data type")
)
