// Package common defines shared constants and sentinel errors used across
// bookmart components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenGeneration       = errors.New("token generation failed")
	ErrTokenExpired          = errors.New("token expired")
	ErrRefreshSessionExpired = errors.New("refresh session expired")
)
