// Package apperr defines the sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrNotFound indicates a requested note or attachment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformed indicates a note has no parseable metadata header.
	ErrMalformed = errors.New("malformed document")
	// ErrInvalidPath indicates a path that resolves outside the vault root.
	ErrInvalidPath = errors.New("path escapes vault root")
	// ErrModelUnavailable indicates the language model call failed outright.
	ErrModelUnavailable = errors.New("model unavailable")
)
