package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"aprovame/pkg/secrets"
)

// CredentialVerifier decides whether a login/password pair is valid.
// Implementations may call out to an identity provider.
type CredentialVerifier interface {
	Verify(ctx context.Context, login, password string) (bool, error)
}

// StaticVerifier accepts a single configured login whose password is stored
// as a bcrypt hash.
type StaticVerifier struct {
	login string
	hash  string
}

// NewStaticVerifier builds a verifier from a bcrypt hash.
func NewStaticVerifier(login, passwordHash string) (*StaticVerifier, error) {
	if login == "" {
		return nil, errors.New("login is required")
	}
	if err := secrets.CheckHash(passwordHash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &StaticVerifier{login: login, hash: passwordHash}, nil
}

// NewStaticVerifierFromPassword hashes password at construction. Meant for
// local runs where only a plain password is configured.
func NewStaticVerifierFromPassword(login, password string) (*StaticVerifier, error) {
	hash, err := secrets.Hash(password, 0)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return NewStaticVerifier(login, hash)
}

func (v *StaticVerifier) Verify(_ context.Context, login, password string) (bool, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(v.login)) == 1
	// Always run bcrypt so timing does not reveal whether the login matched.
	match, err := secrets.Verify(password, v.hash)
	if err != nil {
		return false, fmt.Errorf("compare password: %w", err)
	}
	return loginOK && match, nil
}
