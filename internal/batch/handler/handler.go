package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/httputil"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/platform/validation"
	"aprovame/pkg/requestcontext"
)

// TestEmailSentMessage confirms a synthetic report was handed to the mailer.
const TestEmailSentMessage = "test email sent"

type Intake interface {
	Submit(ctx context.Context, items []models.Item) (*models.Receipt, error)
}

type Notifier interface {
	NotifyBatchCompleted(ctx context.Context, result *models.Result, recipient string) error
	Recipient(recipient string) string
}

type Handler struct {
	intake   Intake
	notifier Notifier
	logger   *slog.Logger
}

func New(intake Intake, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{intake: intake, notifier: notifier, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(request.BodyLimit(validation.MaxBatchBodySize)).
		Post("/integrations/payable/batch", h.HandleSubmit)
	r.With(request.BodyLimit(validation.MaxBodySize)).
		Post("/integrations/payable/test-email", h.HandleTestEmail)
}

// HandleSubmit validates the whole batch synchronously and returns as soon as
// it is queued. Processing results arrive by email.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	receipt, err := h.intake.Submit(ctx, req.Items())
	if err != nil {
		h.logFailure(ctx, "submit batch failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

// HandleTestEmail sends a one-item all-success report to check mail delivery.
func (h *Handler) HandleTestEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TestEmailRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := &models.Result{
		BatchID:       id.NewBatchID(),
		TotalPayables: 1,
		SuccessCount:  1,
		Errors:        []string{},
		ProcessedAt:   requestcontext.Now(ctx),
	}
	recipient := h.notifier.Recipient(req.Email)
	if err := h.notifier.NotifyBatchCompleted(ctx, result, recipient); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to send test email")
		h.logFailure(ctx, "test email failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &TestEmailResponse{
		Message: TestEmailSentMessage,
		Email:   recipient,
	})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
}
