package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"aprovame/internal/auth/service"
	"aprovame/internal/auth/token"
	"aprovame/pkg/platform/httputil"
)

type fixedVerifier struct{}

func (fixedVerifier) Verify(_ context.Context, login, password string) (bool, error) {
	return login == "aprovame" && password == "aprovame", nil
}

type LoginHandlerSuite struct {
	suite.Suite
	router http.Handler
	tokens *token.Service
}

func TestLoginHandlerSuite(t *testing.T) {
	suite.Run(t, new(LoginHandlerSuite))
}

func (s *LoginHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.tokens = token.NewService("test-key", 30*24*time.Hour)
	h := New(service.New(fixedVerifier{}, s.tokens, service.WithLogger(logger)), logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *LoginHandlerSuite) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *LoginHandlerSuite) TestLoginIssuesUsableToken() {
	rec := s.post(`{"login": "aprovame", "password": "aprovame"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("no-store", rec.Header().Get("Cache-Control"))

	var resp LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.EqualValues(2592000, resp.ExpiresIn)
	s.Equal("Bearer", resp.TokenType)

	claims, err := s.tokens.ValidateToken(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal("aprovame", claims.Subject)
}

func (s *LoginHandlerSuite) TestWrongPassword() {
	rec := s.post(`{"login": "aprovame", "password": "nope"}`)
	s.Equal(http.StatusUnauthorized, rec.Code)

	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(service.InvalidCredentials, resp.Description)
}

func (s *LoginHandlerSuite) TestMissingFields() {
	rec := s.post(`{"login": "aprovame"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}
