// Package auth provides authentication primitives: JWT issuing and
// validation, and password verification.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed, has an invalid
	// signature, or fails validation for any reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token was valid but has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidCredentials indicates the email/password pair did not match a
	// registered user. Callers must not reveal which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSecretTooShort indicates the configured JWT secret is below the
	// minimum safe length.
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 characters")
)
