// Package secrets hashes and compares login passwords and produces random
// identifiers for issued tokens.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "aprovame/pkg/domain-errors"
)

// Token returns n random bytes, hex-encoded.
func Token(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token id")
	}
	return hex.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of secret at cost (bcrypt.DefaultCost when cost is 0).
func Hash(secret string, cost int) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// CheckHash reports whether hash is a well-formed bcrypt hash.
func CheckHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid bcrypt hash")
	}
	return nil
}

// Verify reports whether secret matches hash. A mismatch is not an error.
func Verify(secret, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
}
