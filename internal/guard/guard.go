// Package guard provides the route guards gating the dashboard subtree.
// Each guard waits for the session tuple to settle before deciding, so an
// unresolved profile is never misread as a missing role during reloads.
package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

// Default paths matching the SPA's routing.
const (
	DefaultLoginPath    = "/login"
	DefaultFallbackPath = "/dashboard/profile"
)

var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "guard_decisions_total",
		Help: "Total number of route guard decisions",
	},
	[]string{"guard", "decision"},
)

// Session is the read-only slice of the session manager guards consume.
type Session interface {
	WaitSettled(ctx context.Context) (domain.Snapshot, error)
}

type snapshotCtxKey struct{}

// NewContext returns a context carrying the snapshot a guard decided on.
func NewContext(ctx context.Context, snap domain.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotCtxKey{}, snap)
}

// FromContext returns the snapshot stored by the innermost guard. Handlers
// behind a guard read it instead of the live session, so they render the
// state the guard verified even when a concurrent sign-out has cleared the
// profile in the meantime.
func FromContext(ctx context.Context) (domain.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotCtxKey{}).(domain.Snapshot)
	return snap, ok
}

// WithWaitBudget bounds how long a guard waits for the session to settle,
// independent of the request deadline.
func WithWaitBudget(s Session, budget time.Duration) Session {
	return &boundedSession{inner: s, budget: budget}
}

type boundedSession struct {
	inner  Session
	budget time.Duration
}

func (b *boundedSession) WaitSettled(ctx context.Context) (domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, b.budget)
	defer cancel()
	return b.inner.WaitSettled(ctx)
}

// Authenticated gates a subtree on a signed-in identity, regardless of role.
// Anonymous requests are redirected to the login path with the attempted URI
// in the `from` query parameter so the SPA can return after sign-in.
func Authenticated(s Session, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := s.WaitSettled(r.Context())
			if err != nil {
				decisionsTotal.WithLabelValues("authenticated", "unsettled").Inc()
				writeUnsettled(w)
				return
			}

			if snap.Identity == nil {
				decisionsTotal.WithLabelValues("authenticated", "redirect_login").Inc()
				redirectLogin(w, r, loginPath)
				return
			}

			decisionsTotal.WithLabelValues("authenticated", "allow").Inc()
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), snap)))
		})
	}
}

// Roles gates a subtree on the profile role, case-insensitively. Waiting for
// a settled snapshot guarantees the profile fetch has been attempted, so a
// nil profile here means unroled (guest-equivalent), not still-resolving:
// those requests bounce to the neutral fallback page rather than to login.
func Roles(s Session, loginPath, fallbackPath string, roles ...string) func(http.Handler) http.Handler {
	guardName := "roles"
	if len(roles) == 1 {
		guardName = "role_" + roles[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := s.WaitSettled(r.Context())
			if err != nil {
				decisionsTotal.WithLabelValues(guardName, "unsettled").Inc()
				writeUnsettled(w)
				return
			}

			if snap.Identity == nil {
				decisionsTotal.WithLabelValues(guardName, "redirect_login").Inc()
				redirectLogin(w, r, loginPath)
				return
			}

			if snap.Profile.HasRole(roles...) {
				decisionsTotal.WithLabelValues(guardName, "allow").Inc()
				next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), snap)))
				return
			}

			decisionsTotal.WithLabelValues(guardName, "redirect_fallback").Inc()
			http.Redirect(w, r, fallbackPath, http.StatusSeeOther)
		})
	}
}

// ChefOrAdmin gates the chef dashboard pages.
func ChefOrAdmin(s Session) func(http.Handler) http.Handler {
	return Roles(s, DefaultLoginPath, DefaultFallbackPath, domain.RoleChef, domain.RoleAdmin)
}

// AdminOnly gates the admin dashboard pages.
func AdminOnly(s Session) func(http.Handler) http.Handler {
	return Roles(s, DefaultLoginPath, DefaultFallbackPath, domain.RoleAdmin)
}

func redirectLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	http.Redirect(w, r, loginPath+"?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

// writeUnsettled is the HTTP rendition of the loading placeholder: the
// session has not settled within the request's budget.
func writeUnsettled(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "SESSION_UNSETTLED",
		"message": "session resolution in progress, retry shortly",
	})
}
