package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/backend"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/config"
	handler "github.com/habib-web-dev1/local-chef-client-sub000/internal/handler/http"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/identity"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/session"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/health"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/middleware"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/tracing"
)

// App wires together all dependencies and runs the session agent.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	sessions       *session.Manager
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "session-agent",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Profile/session API client.
	api, err := backend.New(backend.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	logger.Info("profile API client initialized",
		slog.String("base_url", cfg.BackendBaseURL),
	)

	// Identity provider and session manager.
	codec := identity.NewTokenCodec(cfg.IdentitySecret, cfg.IdentityIssuer, cfg.IdentityTokenTTL)
	provider := identity.NewLocalProvider(codec, cfg.FederatedEmail, cfg.FederatedName)

	sessions := session.NewManager(provider, api, logger, session.Config{
		ResolveTimeout: cfg.ResolveTimeout,
	})
	sessions.Start()

	// Health checks. The profile API is non-critical: the agent still serves
	// its signed-out state while the backend is down.
	healthHandler := health.NewHandler()
	healthHandler.RegisterNonCritical("profile-api", func(ctx context.Context) error {
		return api.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(sessions, healthHandler, logger, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		GuardWait:     cfg.GuardWait,
		AuthRateRPS:   cfg.AuthRateRPS,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		sessions:       sessions,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Session manager (stop reacting to identity events)
// 3. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Stop session resolution after requests have drained.
	a.sessions.Stop()

	// 3. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
