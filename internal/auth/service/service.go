package service

import (
	"context"
	"log/slog"

	authmetrics "aprovame/internal/auth/metrics"
	"aprovame/internal/auth/token"
	dErrors "aprovame/pkg/domain-errors"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/requestcontext"
)

// InvalidCredentials is the only message a failed login ever returns.
const InvalidCredentials = "invalid credentials"

// TokenIssuer signs access tokens for an authenticated subject.
type TokenIssuer interface {
	Issue(ctx context.Context, subject string) (*token.AccessToken, error)
}

// Service exchanges credentials for an access token.
type Service struct {
	verifier CredentialVerifier
	issuer   TokenIssuer
	limiter  *LoginLimiter
	logger   *slog.Logger
	metrics  *authmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimiter throttles login attempts per client IP.
func WithLimiter(l *LoginLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

func New(verifier CredentialVerifier, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{verifier: verifier, issuer: issuer}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, login, password string) (*token.AccessToken, error) {
	clientIP := requestcontext.ClientIP(ctx)
	if s.limiter != nil && !s.limiter.Allow(clientIP) {
		s.record(ctx, authmetrics.OutcomeThrottle)
		return nil, dErrors.New(dErrors.CodeTooManyRequests, "too many login attempts, try again later")
	}

	ok, err := s.verifier.Verify(ctx, login, password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}
	if !ok {
		s.record(ctx, authmetrics.OutcomeRejected)
		return nil, dErrors.New(dErrors.CodeUnauthorized, InvalidCredentials)
	}

	tok, err := s.issuer.Issue(ctx, login)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.record(ctx, authmetrics.OutcomeSuccess)
	return tok, nil
}

func (s *Service) record(ctx context.Context, outcome string) {
	if outcome != authmetrics.OutcomeSuccess {
		s.logger.WarnContext(ctx, "login refused",
			"outcome", outcome,
			"request_id", request.GetRequestID(ctx),
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}
