// Package notify delivers batch completion reports by email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"aprovame/internal/batch/models"
	"aprovame/internal/platform/privacy"
	request "aprovame/pkg/platform/middleware/request"
)

// DefaultRecipient receives reports when no address is given.
const DefaultRecipient = "admin@bankme.com"

// Email is one outgoing HTML message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// Mailer renders completion reports and hands them to a Sender.
type Mailer struct {
	sender   Sender
	from     string
	fallback string
	logger   *slog.Logger
}

type Option func(m *Mailer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mailer) {
		m.logger = logger
	}
}

// WithFallbackRecipient overrides DefaultRecipient.
func WithFallbackRecipient(address string) Option {
	return func(m *Mailer) {
		if address != "" {
			m.fallback = address
		}
	}
}

func NewMailer(sender Sender, from string, opts ...Option) *Mailer {
	m := &Mailer{
		sender:   sender,
		from:     from,
		fallback: DefaultRecipient,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// NotifyBatchCompleted sends one report for result. An empty recipient falls
// back to the configured default.
func (m *Mailer) NotifyBatchCompleted(ctx context.Context, result *models.Result, recipient string) error {
	to := m.Recipient(recipient)
	html, err := RenderReport(result)
	if err != nil {
		return err
	}
	msg := Email{
		From:    m.from,
		To:      to,
		Subject: Subject(result),
		HTML:    html,
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send batch report %s: %w", result.BatchID, err)
	}
	m.logger.InfoContext(ctx, "batch report sent",
		"batch_id", result.BatchID.String(),
		"recipient", privacy.MaskEmail(to),
		"request_id", request.GetRequestID(ctx),
	)
	return nil
}

// Recipient resolves the address a report for recipient would go to.
func (m *Mailer) Recipient(recipient string) string {
	if to := strings.TrimSpace(recipient); to != "" {
		return to
	}
	return m.fallback
}

// LogSender writes reports to the log instead of mailing them. It is used
// when SMTP is not configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Email) error {
	s.logger.InfoContext(ctx, "email delivery disabled, report logged",
		"to", privacy.MaskEmail(msg.To),
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
	)
	return nil
}
