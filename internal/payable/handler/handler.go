package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aprovame/internal/payable/models"
	"aprovame/internal/payable/service"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/httputil"
	request "aprovame/pkg/platform/middleware/request"
)

type Service interface {
	Create(ctx context.Context, cmd service.CreateCommand) (*models.Payable, error)
	Get(ctx context.Context, payableID id.PayableID) (*models.Payable, error)
	ListByAssignor(ctx context.Context, assignorID id.AssignorID) ([]*models.Payable, error)
	Update(ctx context.Context, payableID id.PayableID, patch models.Patch) (*models.Payable, error)
	Delete(ctx context.Context, payableID id.PayableID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts single-record routes. Batch routes live in the batch handler.
func (h *Handler) Register(r chi.Router) {
	r.Post("/integrations/payable", h.HandleCreate)
	r.Get("/integrations/payable/{id}", h.HandleGet)
	r.Put("/integrations/payable/{id}", h.HandleUpdate)
	r.Delete("/integrations/payable/{id}", h.HandleDelete)
	r.Get("/integrations/payable/assignor/{assignorId}", h.HandleListByAssignor)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePayableRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Create(ctx, cmd)
	if err != nil {
		h.logFailure(ctx, "create payable failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPayableResponse(p))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payableID, err := id.ParsePayableID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid payable id"))
		return
	}

	p, err := h.service.Get(ctx, payableID)
	if err != nil {
		h.logFailure(ctx, "get payable failed", err, request.GetRequestID(ctx), "payable_id", payableID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPayableResponse(p))
}

func (h *Handler) HandleListByAssignor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignorID, err := id.ParseAssignorID(chi.URLParam(r, "assignorId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid assignor id"))
		return
	}

	list, err := h.service.ListByAssignor(ctx, assignorID)
	if err != nil {
		h.logFailure(ctx, "list payables failed", err, request.GetRequestID(ctx), "assignor_id", assignorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPayableListResponse(list))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	payableID, err := id.ParsePayableID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid payable id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdatePayableRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Update(ctx, payableID, patch)
	if err != nil {
		h.logFailure(ctx, "update payable failed", err, requestID, "payable_id", payableID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPayableResponse(p))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payableID, err := id.ParsePayableID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid payable id"))
		return
	}

	if err := h.service.Delete(ctx, payableID); err != nil {
		h.logFailure(ctx, "delete payable failed", err, request.GetRequestID(ctx), "payable_id", payableID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &MessageResponse{Message: "payable deleted"})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	args := append([]any{"error", err, "request_id", requestID}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
