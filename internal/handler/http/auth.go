package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/session"
	apperrors "github.com/habib-web-dev1/local-chef-client-sub000/pkg/errors"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/httputil"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/validator"
)

// AuthHandler handles the auth endpoints driving the session manager.
type AuthHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for account registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

// LoginRequest is the JSON request body for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest is the JSON request body for ID-token sign-in.
type TokenRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sessions.CreateUser(r.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		httputil.WriteError(w, r, mapSessionError(err), h.logger)
		return
	}

	h.writeSettled(w, r, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sessions.SignInEmail(r.Context(), req.Email, req.Password); err != nil {
		httputil.WriteError(w, r, mapSessionError(err), h.logger)
		return
	}

	h.writeSettled(w, r, http.StatusOK)
}

// Google handles POST /api/v1/auth/google, the federated (popup) flow.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignInGoogle(r.Context()); err != nil {
		httputil.WriteError(w, r, mapSessionError(err), h.logger)
		return
	}

	h.writeSettled(w, r, http.StatusOK)
}

// Token handles POST /api/v1/auth/token, adopting a provider ID token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sessions.SignInToken(r.Context(), req.IDToken); err != nil {
		httputil.WriteError(w, r, mapSessionError(err), h.logger)
		return
	}

	h.writeSettled(w, r, http.StatusOK)
}

// Logout handles POST /api/v1/auth/logout. Local state is cleared even when
// the provider sign-out fails, so the response is always the settled
// anonymous snapshot.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.LogOut(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "provider sign-out failed",
			slog.String("error", err.Error()),
		)
	}

	h.writeSettled(w, r, http.StatusOK)
}

// writeSettled waits for the session to settle and responds with the
// resulting snapshot.
func (h *AuthHandler) writeSettled(w http.ResponseWriter, r *http.Request, status int) {
	snap, err := h.sessions.WaitSettled(r.Context())
	if err != nil {
		httputil.WriteError(w, r, apperrors.Unavailable("session resolution in progress"), h.logger)
		return
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: newSessionView(snap)})
}

// mapSessionError translates session error taxonomy into HTTP-mapped errors.
func mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrIdentity):
		return apperrors.Unauthorized(err.Error())
	case errors.Is(err, session.ErrSessionExchange):
		return apperrors.Unavailable(err.Error())
	case errors.Is(err, session.ErrProfileFetch):
		return apperrors.Unavailable(err.Error())
	default:
		return err
	}
}
