// Package identity defines the port to the external identity provider and a
// local in-process implementation for development and tests.
package identity

import (
	"context"
	"errors"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

// Provider errors surfaced to callers.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTokenInvalid       = errors.New("invalid identity token")
)

// Listener receives the current identity, or nil when signed out. It fires
// once on subscription with the current state and again on every change.
type Listener func(*domain.Identity)

// Provider is the identity provider port. Listener invocation is the sole
// trigger for session state transitions; the sign-in/up/out operations only
// report success or failure to their caller.
type Provider interface {
	// Subscribe registers a listener and returns an unsubscribe function.
	// The listener is invoked immediately with the current identity (or nil).
	Subscribe(fn Listener) (unsubscribe func())

	// CreateAccount registers a new credential pair and signs the account in.
	CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignInPassword authenticates with an email/password credential pair.
	SignInPassword(ctx context.Context, email, password string) (*domain.Identity, error)

	// SignInFederated runs the federated (popup-style) flow.
	SignInFederated(ctx context.Context) (*domain.Identity, error)

	// SignInToken adopts an identity from a provider-issued ID token, the way
	// a federated popup hands its result back.
	SignInToken(ctx context.Context, idToken string) (*domain.Identity, error)

	// UpdateDisplayName sets the display name on the signed-in identity.
	UpdateDisplayName(ctx context.Context, displayName string) error

	// SignOut clears the signed-in identity and notifies listeners with nil.
	SignOut(ctx context.Context) error
}
