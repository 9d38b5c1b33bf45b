package http

import (
	"log/slog"
	"net/http"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/session"
	apperrors "github.com/habib-web-dev1/local-chef-client-sub000/pkg/errors"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/httputil"
)

// SessionView is the JSON shape of the exposed session tuple.
type SessionView struct {
	User    *domain.Identity `json:"user"`
	Profile *domain.Profile  `json:"profile"`
	State   string           `json:"state"`
	Loading bool             `json:"loading"`
}

func newSessionView(snap domain.Snapshot) SessionView {
	return SessionView{
		User:    snap.Identity,
		Profile: snap.Profile,
		State:   snap.State().String(),
		Loading: snap.Loading,
	}
}

// SessionHandler exposes the current session tuple over HTTP.
type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(sessions *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Get handles GET /api/v1/session. It never blocks: a loading snapshot is a
// valid answer the SPA renders as its placeholder.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: newSessionView(h.sessions.Snapshot()),
	})
}

// Refresh handles POST /api/v1/session/refresh: a manual re-resolution, the
// recovery path after a swallowed profile fetch failure.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	snap, err := h.sessions.WaitSettled(r.Context())
	if err != nil {
		httputil.WriteError(w, r, apperrors.Unavailable("session resolution in progress"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newSessionView(snap)})
}
