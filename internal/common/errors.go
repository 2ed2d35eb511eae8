// Package common defines shared constants and sentinel errors used across
// client and server layers of GeoTrack. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid, malformed or foreign-signed token).
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")

	// Credential errors.
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password too short")
	ErrEmailExists      = errors.New("email already registered")

	// Throttling errors. The generic limiter and the location freshness
	// check are reported separately.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrTooManyRequests   = errors.New("location updated too recently")

	// Payload errors.
	ErrMalformedPayload = errors.New("malformed payload")
	ErrContentType      = errors.New("unsupported content type")
	ErrNoFile           = errors.New("no file in request")
	ErrNotMultipart     = errors.New("request is not multipart/form-data")
)
