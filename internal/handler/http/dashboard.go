package http

import (
	"log/slog"
	"net/http"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/guard"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/session"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/httputil"
)

// DashboardHandler serves the guarded dashboard pages. The guards decide who
// gets here; the handlers only render what the settled session carries.
type DashboardHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(sessions *session.Manager, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, logger: logger}
}

// snapshot returns the snapshot the guard decided on. Re-reading the live
// session here would race with sign-outs landing between the guard's wait and
// the render. A live read remains only as a fallback for unguarded mounts.
func (h *DashboardHandler) snapshot(r *http.Request) domain.Snapshot {
	if snap, ok := guard.FromContext(r.Context()); ok {
		return snap
	}
	return h.sessions.Snapshot()
}

// Profile handles GET /dashboard/profile, the neutral page every
// authenticated identity can reach.
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(r)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{
			"page":    "profile",
			"user":    snap.Identity,
			"profile": snap.Profile,
		},
	})
}

// Chef handles GET /dashboard/chef, reachable by chefs and admins.
func (h *DashboardHandler) Chef(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(r)
	if !snap.Profile.HasRole(domain.RoleChef, domain.RoleAdmin) {
		http.Redirect(w, r, guard.DefaultFallbackPath, http.StatusSeeOther)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{
			"page":         "chef",
			"chef_id":      snap.Profile.ChefID,
			"chef_details": snap.Profile.ChefDetails,
		},
	})
}

// Admin handles GET /dashboard/admin, reachable by admins only.
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(r)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{
			"page": "admin",
			"user": snap.Identity,
		},
	})
}
