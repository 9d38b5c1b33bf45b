package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/guard"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/session"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/health"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/middleware"
)

// RouterConfig holds the router's tuning knobs.
type RouterConfig struct {
	CORS          middleware.CORSConfig
	GuardWait     time.Duration
	AuthRateRPS   int
	AuthRateBurst int
}

// NewRouter creates a chi router with all session agent routes registered.
func NewRouter(
	sessions *session.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("session-agent"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("session-agent"))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	authHandler := NewAuthHandler(sessions, logger)
	sessionHandler := NewSessionHandler(sessions, logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst, logger))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/google", authHandler.Google)
		r.Post("/token", authHandler.Token)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", sessionHandler.Get)
		r.Post("/refresh", sessionHandler.Refresh)
	})

	// Guarded dashboard subtree. Guards wait for a settled session within the
	// configured budget before deciding.
	bounded := guard.WithWaitBudget(sessions, cfg.GuardWait)
	dashboard := NewDashboardHandler(sessions, logger)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(guard.Authenticated(bounded, guard.DefaultLoginPath))

		r.Get("/profile", dashboard.Profile)

		r.Group(func(r chi.Router) {
			r.Use(guard.ChefOrAdmin(bounded))
			r.Get("/chef", dashboard.Chef)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.AdminOnly(bounded))
			r.Get("/admin", dashboard.Admin)
		})
	})

	return r
}
