// Package session implements the session/role resolution state machine. A
// Manager observes identity provider auth events, exchanges each identity for
// a server session cookie, fetches the role-carrying profile record, and
// publishes the resulting {Identity, Profile, Loading} tuple to guards and
// other read-only consumers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/backend"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
	"github.com/habib-web-dev1/local-chef-client-sub000/internal/identity"
)

// defaultResolveTimeout bounds a single resolution (exchange + fetch).
const defaultResolveTimeout = 10 * time.Second

// Backend is the slice of the profile/session API the manager depends on.
type Backend interface {
	ExchangeSession(ctx context.Context, email, uid string) error
	ClearSession(ctx context.Context) error
	GetProfile(ctx context.Context, email string) (*domain.Profile, error)
	CreateProfile(ctx context.Context, in backend.CreateProfileInput) error
}

// Config holds Manager tuning knobs.
type Config struct {
	// ResolveTimeout bounds the exchange + profile fetch of one auth event.
	ResolveTimeout time.Duration
}

// Manager owns the exposed session tuple. It is the only writer; everything
// else reads through Snapshot, Subscribe, or WaitSettled.
type Manager struct {
	provider identity.Provider
	backend  Backend
	logger   *slog.Logger

	resolveTimeout time.Duration

	mu      sync.Mutex
	gen     uint64
	snap    domain.Snapshot
	subs    map[int]func(domain.Snapshot)
	nextSub int
	settled chan struct{}

	baseCtx     context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewManager creates a manager in the initializing state (Loading=true,
// nothing resolved). Call Start to attach it to the provider.
func NewManager(provider identity.Provider, api Backend, logger *slog.Logger, cfg Config) *Manager {
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		provider:       provider,
		backend:        api,
		logger:         logger,
		resolveTimeout: timeout,
		snap:           domain.Snapshot{Loading: true},
		subs:           make(map[int]func(domain.Snapshot)),
		settled:        make(chan struct{}),
		baseCtx:        ctx,
		cancel:         cancel,
	}
}

// Start subscribes to the identity provider. The provider fires the listener
// immediately with the current identity, so the manager settles even when
// nobody ever signs in.
func (m *Manager) Start() {
	m.unsubscribe = m.provider.Subscribe(m.onAuthStateChanged)
}

// Stop detaches from the provider and cancels any in-flight resolution.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.cancel()
}

// Snapshot returns the current tuple without blocking.
func (m *Manager) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers a callback invoked on every published state change,
// including loading transitions. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(domain.Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// WaitSettled blocks until the tuple is settled (Loading=false) or the
// context is done, then returns the settled snapshot.
func (m *Manager) WaitSettled(ctx context.Context) (domain.Snapshot, error) {
	for {
		m.mu.Lock()
		if !m.snap.Loading {
			snap := m.snap
			m.mu.Unlock()
			return snap, nil
		}
		ch := m.settled
		m.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		}
	}
}

// --- Operations ---

// CreateUser registers a new identity, optionally sets its display name,
// exchanges for a session, registers the profile record server-side, and
// re-resolves so the settled state carries the new profile. Any failing step
// rejects; the background listener still guarantees a profile fetch attempt
// for the created identity.
func (m *Manager) CreateUser(ctx context.Context, email, password, displayName string) error {
	ident, err := m.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: create account: %v", ErrIdentity, err)
	}

	if displayName != "" {
		if err := m.provider.UpdateDisplayName(ctx, displayName); err != nil {
			return fmt.Errorf("%w: set display name: %v", ErrIdentity, err)
		}
		ident.DisplayName = displayName
	}

	if err := m.backend.ExchangeSession(ctx, ident.Email, ident.UID); err != nil {
		exchangeFailuresTotal.Inc()
		return fmt.Errorf("%w: %v", ErrSessionExchange, err)
	}

	if err := m.backend.CreateProfile(ctx, backend.CreateProfileInput{
		Email:       ident.Email,
		UID:         ident.UID,
		DisplayName: ident.DisplayName,
		PhotoURL:    ident.PhotoURL,
	}); err != nil {
		return fmt.Errorf("%w: register profile: %v", ErrProfileFetch, err)
	}

	return m.Refresh(ctx)
}

// SignInEmail authenticates with a password credential. On failure the
// exposed state is left exactly as it was; on success the provider event
// drives resolution.
func (m *Manager) SignInEmail(ctx context.Context, email, password string) error {
	if _, err := m.provider.SignInPassword(ctx, email, password); err != nil {
		return fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	return nil
}

// SignInGoogle runs the federated sign-in flow.
func (m *Manager) SignInGoogle(ctx context.Context) error {
	if _, err := m.provider.SignInFederated(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	return nil
}

// SignInToken adopts a provider-issued ID token.
func (m *Manager) SignInToken(ctx context.Context, idToken string) error {
	if _, err := m.provider.SignInToken(ctx, idToken); err != nil {
		return fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	return nil
}

// LogOut signs out of the identity provider. The server-side session clear is
// best-effort; identity and profile are cleared unconditionally, even when
// the provider sign-out itself fails.
func (m *Manager) LogOut(ctx context.Context) error {
	if err := m.provider.SignOut(ctx); err != nil {
		// The provider will not emit a signed-out event; force the transition.
		gen := m.beginResolution(nil)
		m.resolve(gen, nil)
		return fmt.Errorf("%w: sign out: %v", ErrIdentity, err)
	}
	return nil
}

// Refresh re-resolves the current identity: re-exchanges the session and
// re-fetches the profile. This is the manual re-attempt after a swallowed
// profile fetch failure.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	ident := m.snap.Identity
	m.mu.Unlock()

	gen := m.beginResolution(ident)
	m.resolve(gen, ident)
	return nil
}

// --- Resolution ---

// onAuthStateChanged is the provider listener: the sole trigger for state
// machine transitions.
func (m *Manager) onAuthStateChanged(ident *domain.Identity) {
	gen := m.beginResolution(ident)
	m.resolve(gen, ident)
}

// beginResolution starts a new generation: the identity is published
// immediately with Loading=true, and any older in-flight resolution becomes
// stale.
func (m *Manager) beginResolution(ident *domain.Identity) uint64 {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	if !m.snap.Loading {
		m.settled = make(chan struct{})
	}
	m.snap = domain.Snapshot{Identity: ident, Profile: nil, Loading: true}
	subs := m.subscriberList()
	snap := m.snap
	m.mu.Unlock()

	m.publish(subs, snap)
	return gen
}

// resolve performs the sequential session exchange and profile fetch for one
// auth event, then commits unless a newer generation has superseded it.
func (m *Manager) resolve(gen uint64, ident *domain.Identity) {
	ctx, cancel := context.WithTimeout(m.baseCtx, m.resolveTimeout)
	defer cancel()

	if ident == nil {
		// Best-effort server-side clear; failure is not fatal.
		if err := m.backend.ClearSession(ctx); err != nil {
			m.logger.WarnContext(ctx, "session clear failed",
				slog.String("error", err.Error()),
			)
		}
		m.commit(gen, nil, nil)
		return
	}

	// The profile fetch is cookie-authorized, so the exchange must complete
	// first; an exchange failure aborts the fetch.
	if err := m.backend.ExchangeSession(ctx, ident.Email, ident.UID); err != nil {
		exchangeFailuresTotal.Inc()
		m.logger.WarnContext(ctx, "session exchange failed",
			slog.String("uid", ident.UID),
			slog.String("error", err.Error()),
		)
		m.commit(gen, ident, nil)
		return
	}

	profile, err := m.backend.GetProfile(ctx, ident.Email)
	if err != nil {
		// Swallowed: the identity stays signed in with no role and guards
		// treat it as guest-equivalent. Next auth event or Refresh re-attempts.
		profileFetchFailuresTotal.Inc()
		m.logger.WarnContext(ctx, "profile fetch failed, degrading to unroled",
			slog.String("uid", ident.UID),
			slog.String("email", ident.Email),
			slog.String("error", err.Error()),
		)
		profile = nil
	}

	m.commit(gen, ident, profile)
}

// commit settles a resolution. Stale generations are discarded so the latest
// auth event wins regardless of network completion order.
func (m *Manager) commit(gen uint64, ident *domain.Identity, profile *domain.Profile) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		staleResolutionsTotal.Inc()
		m.logger.Debug("discarding stale resolution",
			slog.Uint64("generation", gen),
		)
		return
	}

	m.snap = domain.Snapshot{Identity: ident, Profile: profile, Loading: false}
	close(m.settled)
	subs := m.subscriberList()
	snap := m.snap
	m.mu.Unlock()

	transitionsTotal.WithLabelValues(snap.State().String()).Inc()

	if ident != nil {
		m.logger.Info("session settled",
			slog.String("uid", ident.UID),
			slog.String("state", snap.State().String()),
		)
	} else {
		m.logger.Info("session settled", slog.String("state", snap.State().String()))
	}

	m.publish(subs, snap)
}

// subscriberList must be called with mu held.
func (m *Manager) subscriberList() []func(domain.Snapshot) {
	out := make([]func(domain.Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}

// publish runs outside the lock so subscribers may call back into the manager.
func (m *Manager) publish(subs []func(domain.Snapshot), snap domain.Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
