package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"aprovame/pkg/platform/circuit"
)

// ErrCircuitOpen is returned when the primary transport was skipped.
var ErrCircuitOpen = errors.New("mail transport circuit open")

// ResilientSender guards a primary Sender with a circuit breaker. Reports
// that cannot go through the primary are handed to the fallback so they are
// never silently dropped; the caller still gets an error.
type ResilientSender struct {
	primary  Sender
	fallback Sender
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResilientSender(primary, fallback Sender, breaker *circuit.Breaker, logger *slog.Logger) *ResilientSender {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = circuit.New("mail")
	}
	return &ResilientSender{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *ResilientSender) Send(ctx context.Context, msg Email) error {
	if !s.breaker.Allow() {
		if err := s.fallback.Send(ctx, msg); err != nil {
			return fmt.Errorf("%w: fallback: %w", ErrCircuitOpen, err)
		}
		return ErrCircuitOpen
	}

	err := s.primary.Send(ctx, msg)
	if err == nil {
		if change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "circuit breaker closed, mail transport recovered",
				"breaker", s.breaker.Name(),
			)
		}
		return nil
	}

	if change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "circuit breaker opened, reports will be logged",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	if ferr := s.fallback.Send(ctx, msg); ferr != nil {
		s.logger.ErrorContext(ctx, "fallback report delivery failed", "error", ferr)
	}
	return err
}
