package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

// staticSession settles immediately with a fixed snapshot.
type staticSession struct {
	snap domain.Snapshot
}

func (s *staticSession) WaitSettled(_ context.Context) (domain.Snapshot, error) {
	return s.snap, nil
}

// blockedSession never settles; WaitSettled honors only context cancellation.
type blockedSession struct{}

func (s *blockedSession) WaitSettled(ctx context.Context) (domain.Snapshot, error) {
	<-ctx.Done()
	return domain.Snapshot{}, ctx.Err()
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func anonymous() *staticSession {
	return &staticSession{snap: domain.Snapshot{}}
}

func signedIn(role string) *staticSession {
	ident := &domain.Identity{UID: "uid-1", Email: "user@example.com"}
	snap := domain.Snapshot{Identity: ident}
	if role != "" {
		snap.Profile = &domain.Profile{UID: "uid-1", Email: "user@example.com", Role: role}
	}
	return &staticSession{snap: snap}
}

// --- Authenticated ---

func TestAuthenticated_AllowsSignedIn(t *testing.T) {
	h := Authenticated(signedIn(domain.RoleUser), DefaultLoginPath)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticated_AllowsUnroled(t *testing.T) {
	// Signed in but profile fetch failed: guest-equivalent role, still a
	// valid authenticated principal.
	h := Authenticated(signedIn(""), DefaultLoginPath)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticated_RedirectsAnonymousToLoginWithFrom(t *testing.T) {
	h := Authenticated(anonymous(), DefaultLoginPath)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef?tab=orders", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?from=%2Fdashboard%2Fchef%3Ftab%3Dorders", rec.Header().Get("Location"))
}

func TestAuthenticated_UnsettledSessionReturns503(t *testing.T) {
	bounded := WithWaitBudget(&blockedSession{}, 20*time.Millisecond)
	h := Authenticated(bounded, DefaultLoginPath)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "SESSION_UNSETTLED")
}

// --- Role guards ---

func TestChefOrAdmin_AllowsChef(t *testing.T) {
	h := ChefOrAdmin(signedIn(domain.RoleChef))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChefOrAdmin_AllowsAdmin(t *testing.T) {
	h := ChefOrAdmin(signedIn(domain.RoleAdmin))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChefOrAdmin_RoleCompareIsCaseInsensitive(t *testing.T) {
	h := ChefOrAdmin(signedIn("Chef"))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChefOrAdmin_RedirectsPlainUserToFallback(t *testing.T) {
	h := ChefOrAdmin(signedIn(domain.RoleUser))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DefaultFallbackPath, rec.Header().Get("Location"))
}

func TestChefOrAdmin_RedirectsUnroledToFallback(t *testing.T) {
	// Settled with a nil profile means the fetch was attempted and the user
	// is guest-equivalent, so this is a role bounce, not a login redirect.
	h := ChefOrAdmin(signedIn(""))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DefaultFallbackPath, rec.Header().Get("Location"))
}

func TestChefOrAdmin_RedirectsAnonymousToLogin(t *testing.T) {
	h := ChefOrAdmin(anonymous())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?from=%2Fdashboard%2Fchef", rec.Header().Get("Location"))
}

func TestAdminOnly_RejectsChef(t *testing.T) {
	h := AdminOnly(signedIn(domain.RoleChef))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DefaultFallbackPath, rec.Header().Get("Location"))
}

func TestAdminOnly_AllowsAdmin(t *testing.T) {
	h := AdminOnly(signedIn(domain.RoleAdmin))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoles_UnsettledSessionNeverTreatedAsWrongRole(t *testing.T) {
	// While resolution is in flight the guard must not bounce to the
	// fallback page; the only acceptable answers are wait or 503.
	bounded := WithWaitBudget(&blockedSession{}, 20*time.Millisecond)
	h := ChefOrAdmin(bounded)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestAuthenticated_AllowStoresSnapshotInContext(t *testing.T) {
	var got domain.Snapshot
	var ok bool
	h := Authenticated(signedIn(domain.RoleUser), DefaultLoginPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil))

	require.True(t, ok)
	require.NotNil(t, got.Identity)
	assert.Equal(t, "uid-1", got.Identity.UID)
}

func TestRoles_AllowStoresSnapshotInContext(t *testing.T) {
	var got domain.Snapshot
	var ok bool
	h := ChefOrAdmin(signedIn(domain.RoleChef))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chef", nil))

	require.True(t, ok)
	require.NotNil(t, got.Profile)
	assert.Equal(t, domain.RoleChef, got.Profile.Role)
}

func TestFromContext_AbsentWithoutGuard(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

// --- WithWaitBudget ---

func TestWithWaitBudget_PassesThroughSettledSnapshot(t *testing.T) {
	bounded := WithWaitBudget(signedIn(domain.RoleChef), time.Second)

	snap, err := bounded.WaitSettled(context.Background())

	require.NoError(t, err)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, domain.RoleChef, snap.Profile.Role)
}

func TestWithWaitBudget_ExpiresIndependentlyOfRequestContext(t *testing.T) {
	bounded := WithWaitBudget(&blockedSession{}, 20*time.Millisecond)

	start := time.Now()
	_, err := bounded.WaitSettled(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
