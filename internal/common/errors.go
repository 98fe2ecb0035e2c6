// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should match these with errors.Is.
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
	ErrTokenExpired = errors.New("token expired")

	// Signature challenge errors.
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStaleChallenge   = errors.New("stale challenge timestamp")
)
