package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	h := RateLimit(1, 2, testLogger)(passHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	h := RateLimit(1, 1, testLogger)(passHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_TracksClientsSeparately(t *testing.T) {
	h := RateLimit(1, 1, testLogger)(passHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	first.RemoteAddr = "10.0.0.3:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different IP has its own bucket.
	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	second.RemoteAddr = "10.0.0.4:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVisitorStore_CleanupEvictsStaleEntries(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	now := time.Now()
	store.nowFunc = func() time.Time { return now }

	store.getVisitor("10.0.0.5")
	require.Len(t, store.visitors, 1)

	store.nowFunc = func() time.Time { return now.Add(2 * time.Minute) }
	store.cleanup()

	assert.Empty(t, store.visitors)
}

func TestVisitorStore_GetVisitorSweepsIdleClients(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	now := time.Now()
	store.nowFunc = func() time.Time { return now }
	store.lastSweep = now

	store.getVisitor("10.0.0.6")
	require.Len(t, store.visitors, 1)

	// The next lookup past the ttl sweeps the idle entry inline; no
	// background goroutine is involved.
	store.nowFunc = func() time.Time { return now.Add(2 * time.Minute) }
	store.getVisitor("10.0.0.7")

	require.Len(t, store.visitors, 1)
	assert.Contains(t, store.visitors, "10.0.0.7")
	assert.NotContains(t, store.visitors, "10.0.0.6")
}
