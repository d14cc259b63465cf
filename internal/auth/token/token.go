// Package token issues and validates the HS256 bearer tokens that guard the
// integration API.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "aprovame/pkg/domain-errors"
	authmw "aprovame/pkg/platform/middleware/auth"
	"aprovame/pkg/requestcontext"
	"aprovame/pkg/secrets"
)

// DefaultTTL is the lifetime of an access token.
const DefaultTTL = 30 * 24 * time.Hour

const defaultIssuer = "aprovame"

// Claims are the claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// AccessToken is a freshly signed token.
type AccessToken struct {
	Value     string
	JTI       string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Service signs and validates access tokens with a shared secret.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     defaultIssuer,
		ttl:        ttl,
	}
}

// Issue signs a token for subject. Issued-at comes from the request clock.
func (s *Service) Issue(ctx context.Context, subject string) (*AccessToken, error) {
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}
	jti, err := newJTI()
	if err != nil {
		return nil, fmt.Errorf("generate jti: %w", err)
	}
	now := requestcontext.Now(ctx)
	expiresAt := now.Add(s.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AccessToken{
		Value:     signed,
		JTI:       jti,
		ExpiresIn: s.ttl,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse validates signature, algorithm, expiry and issuer.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// ValidateToken adapts Parse to the bearer middleware.
func (s *Service) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{Subject: claims.Subject, JTI: claims.ID}, nil
}

func newJTI() (string, error) {
	return secrets.Token(16)
}
