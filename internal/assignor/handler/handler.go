package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aprovame/internal/assignor/models"
	"aprovame/internal/assignor/service"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/httputil"
	request "aprovame/pkg/platform/middleware/request"
)

// Service defines the assignor operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, cmd service.CreateCommand) (*models.Assignor, error)
	Get(ctx context.Context, assignorID id.AssignorID) (*models.Assignor, error)
	List(ctx context.Context) ([]*models.Assignor, error)
	Update(ctx context.Context, assignorID id.AssignorID, patch models.Patch) (*models.Assignor, error)
	Delete(ctx context.Context, assignorID id.AssignorID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/integrations/assignor", h.HandleCreate)
	r.Get("/integrations/assignor", h.HandleList)
	r.Get("/integrations/assignor/{id}", h.HandleGet)
	r.Put("/integrations/assignor/{id}", h.HandleUpdate)
	r.Delete("/integrations/assignor/{id}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateAssignorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	a, err := h.service.Create(ctx, req.ToCommand())
	if err != nil {
		h.logFailure(ctx, "create assignor failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toAssignorResponse(a))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		h.logFailure(ctx, "list assignors failed", err, request.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssignorListResponse(list))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignorID, ok := parseAssignorID(w, r)
	if !ok {
		return
	}

	a, err := h.service.Get(ctx, assignorID)
	if err != nil {
		h.logFailure(ctx, "get assignor failed", err, request.GetRequestID(ctx), "assignor_id", assignorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssignorResponse(a))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	assignorID, ok := parseAssignorID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateAssignorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	a, err := h.service.Update(ctx, assignorID, req.ToPatch())
	if err != nil {
		h.logFailure(ctx, "update assignor failed", err, requestID, "assignor_id", assignorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssignorResponse(a))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignorID, ok := parseAssignorID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, assignorID); err != nil {
		h.logFailure(ctx, "delete assignor failed", err, request.GetRequestID(ctx), "assignor_id", assignorID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &MessageResponse{Message: "assignor deleted"})
}

func parseAssignorID(w http.ResponseWriter, r *http.Request) (id.AssignorID, bool) {
	assignorID, err := id.ParseAssignorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid assignor id"))
		return id.AssignorID{}, false
	}
	return assignorID, true
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	args := append([]any{"error", err, "request_id", requestID}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
