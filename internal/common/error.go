// Package common defines shared constants and sentinel errors used across
// the server, worker and CLI. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Request-shape and hierarchy errors reported by the catalog and uploader.
	ErrValidation      = errors.New("validation error")
	ErrParentNotFound  = errors.New("parent not found")
	ErrParentNotFolder = errors.New("parent is not a folder")

	// Registration errors.
	ErrAlreadyExists = errors.New("already exists")

	// Blob storage errors.
	ErrIO = errors.New("blob i/o error")

	// Thumbnail job errors.
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidJob   = errors.New("invalid job")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Request-shape violations. Each wraps ErrValidation.
var (
	ErrMissingName = fmt.Errorf("%w: missing name", ErrValidation)
	ErrMissingType = fmt.Errorf("%w: missing type", ErrValidation)
	ErrMissingData = fmt.Errorf("%w: missing data", ErrValidation)

	ErrMissingEmail    = fmt.Errorf("%w: missing email", ErrValidation)
	ErrMissingPassword = fmt.Errorf("%w: missing password", ErrValidation)
)
