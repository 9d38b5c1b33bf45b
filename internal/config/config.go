package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/habib-web-dev1/local-chef-client-sub000/pkg/config"
)

// devIdentitySecret is the default secret accepted only in development.
const devIdentitySecret = "local-dev-identity-secret"

// Config holds all configuration for the session agent.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SESSION_HTTP_PORT" envDefault:"8090"`

	// Marketplace profile/session API
	BackendBaseURL string        `env:"PROFILE_API_URL" envDefault:"http://localhost:5000"`
	BackendTimeout time.Duration `env:"PROFILE_API_TIMEOUT" envDefault:"15s"`

	// Session resolution
	ResolveTimeout time.Duration `env:"SESSION_RESOLVE_TIMEOUT" envDefault:"10s"`
	GuardWait      time.Duration `env:"GUARD_WAIT_TIMEOUT" envDefault:"3s"`

	// Local identity provider
	IdentitySecret   string        `env:"IDENTITY_TOKEN_SECRET" envDefault:"local-dev-identity-secret"`
	IdentityIssuer   string        `env:"IDENTITY_TOKEN_ISSUER" envDefault:"local-chef-identity"`
	IdentityTokenTTL time.Duration `env:"IDENTITY_TOKEN_TTL" envDefault:"1h"`
	FederatedEmail   string        `env:"FEDERATED_STUB_EMAIL" envDefault:"google.user@localchef.dev"`
	FederatedName    string        `env:"FEDERATED_STUB_NAME" envDefault:"Google User"`

	// Rate limiting on auth endpoints
	AuthRateRPS   int `env:"AUTH_RATE_LIMIT_RPS" envDefault:"5"`
	AuthRateBurst int `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load session agent config: %w", err)
	}

	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("PROFILE_API_URL must not be empty")
	}

	// Outside development, require an explicitly set, strong token secret.
	if cfg.Environment != "development" {
		if cfg.IdentitySecret == devIdentitySecret {
			return nil, fmt.Errorf("IDENTITY_TOKEN_SECRET must be explicitly set in %q mode", cfg.Environment)
		}
		if len(cfg.IdentitySecret) < 32 {
			return nil, fmt.Errorf("IDENTITY_TOKEN_SECRET must be at least 32 characters long, got %d", len(cfg.IdentitySecret))
		}
	}

	return cfg, nil
}
