// Package backend is the HTTP/JSON client for the marketplace profile and
// session API. The API is cookie-session based: ExchangeSession obtains the
// session cookie and the cookie jar carries it on subsequent calls; the
// client never reads the cookie value.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
	"github.com/habib-web-dev1/local-chef-client-sub000/pkg/httpclient"
)

// serviceName labels downstream errors and the circuit breaker.
const serviceName = "profile-api"

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the profile/session API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// CreateProfileInput holds the parameters for registering a profile record.
type CreateProfileInput struct {
	Email       string `json:"email"`
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// New creates a client with a cookie jar and circuit breaker protection.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Jar = jar
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	// Resolution is strictly sequential and the caller owns the retry policy
	// (manual refresh or the next auth event), so no transport-level retries.
	clientCfg.MaxRetries = 0

	base := httpclient.New(clientCfg)
	breaker := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig(serviceName), logger)

	return &Client{
		baseURL: cfg.BaseURL,
		http:    breaker,
		logger:  logger,
	}, nil
}

// ExchangeSession exchanges an identity for a server session cookie.
func (c *Client) ExchangeSession(ctx context.Context, email, uid string) error {
	body, err := json.Marshal(map[string]string{"email": email, "uid": uid})
	if err != nil {
		return fmt.Errorf("marshal session exchange request: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/auth/jwt", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("session exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	return nil
}

// ClearSession invalidates the server session cookie.
func (c *Client) ClearSession(ctx context.Context) error {
	resp, err := c.http.Post(ctx, c.baseURL+"/auth/logout", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	return nil
}

// GetProfile fetches the profile record for the given email. The call is
// cookie-authenticated; a 404 maps to a NotFound error.
func (c *Client) GetProfile(ctx context.Context, email string) (*domain.Profile, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/users/"+url.PathEscape(email))
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var profile domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile registers a profile record for a newly created identity.
func (c *Client) CreateProfile(ctx context.Context, in CreateProfileInput) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/users", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	return nil
}

// Ping reports whether the API base URL is reachable. Any HTTP response
// counts as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", serviceName, err)
	}
	_ = resp.Body.Close()
	return nil
}
