package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil when the password matches the hash and
	// ErrInvalidCredentials when it does not.
	Compare(ctx context.Context, hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier with bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a bcrypt-backed PasswordVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Ensure BcryptVerifier implements PasswordVerifier.
var _ PasswordVerifier = (*BcryptVerifier)(nil)

// Compare implements PasswordVerifier.Compare.
// A malformed stored hash also reads as bad credentials; the caller never
// learns which half failed.
func (v *BcryptVerifier) Compare(_ context.Context, hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
