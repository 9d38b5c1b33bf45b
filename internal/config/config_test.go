package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8090, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:5000", cfg.BackendBaseURL)
	assert.Equal(t, 10*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 3*time.Second, cfg.GuardWait)
	assert.Equal(t, 5, cfg.AuthRateRPS)
	assert.Equal(t, 10, cfg.AuthRateBurst)
}

func TestLoad_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"SESSION_HTTP_PORT":       "9000",
		"PROFILE_API_URL":         "http://profile.internal:5000",
		"SESSION_RESOLVE_TIMEOUT": "5s",
		"GUARD_WAIT_TIMEOUT":      "1s",
		"CORS_ALLOWED_ORIGINS":    "https://app.example.com,https://admin.example.com",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "http://profile.internal:5000", cfg.BackendBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, time.Second, cfg.GuardWait)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{"SESSION_HTTP_PORT": "99999"})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_Development_AcceptsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "local-dev-identity-secret", cfg.IdentitySecret)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "production"})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_TOKEN_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":           "production",
		"IDENTITY_TOKEN_SECRET": "too-short",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Production_AcceptsStrongSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":           "production",
		"IDENTITY_TOKEN_SECRET": "a-genuinely-long-and-random-secret-value-1234",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
