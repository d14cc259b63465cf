package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"aprovame/internal/auth/token"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/httputil"
	request "aprovame/pkg/platform/middleware/request"
	"aprovame/pkg/validation"
)

type Service interface {
	Login(ctx context.Context, login, password string) (*token.AccessToken, error)
}

type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register mounts the public login route. Everything under /integrations is
// guarded by the bearer middleware in the parent router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth", h.HandleLogin)
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=140"`
	Password string `json:"password" validate:"required,max=256"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Login = strings.TrimSpace(r.Login)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// HandleLogin exchanges a login/password pair for a bearer token.
//
// Input: { "login": "aprovame", "password": "..." }
// Output: { "access_token": "...", "token_type": "Bearer", "expires_in": 2592000 }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tok, err := h.auth.Login(ctx, req.Login, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "login failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		AccessToken: tok.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tok.ExpiresIn.Seconds()),
	})
}
