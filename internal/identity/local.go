package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

// bcryptCost is the cost factor for password hashing in the local provider.
const bcryptCost = 10

type account struct {
	uid          string
	email        string
	displayName  string
	photoURL     string
	passwordHash []byte
}

// LocalProvider is an in-process identity provider used in development and
// tests. Accounts live in memory with bcrypt-hashed passwords; the federated
// flow signs in a preconfigured stub account.
type LocalProvider struct {
	codec *TokenCodec

	mu        sync.Mutex
	accounts  map[string]*account // keyed by lowercase email
	current   *domain.Identity
	listeners map[int]Listener
	nextID    int

	// dispatchMu serializes listener notification so auth-state events are
	// delivered at-most-one-in-flight.
	dispatchMu sync.Mutex

	federatedEmail string
	federatedName  string
}

// NewLocalProvider creates an empty local provider. The codec signs the ID
// tokens the provider hands out; federatedEmail/federatedName configure the
// stub account used by the federated flow.
func NewLocalProvider(codec *TokenCodec, federatedEmail, federatedName string) *LocalProvider {
	return &LocalProvider{
		codec:          codec,
		accounts:       make(map[string]*account),
		listeners:      make(map[int]Listener),
		federatedEmail: federatedEmail,
		federatedName:  federatedName,
	}
}

// Subscribe registers a listener and fires it immediately with the current
// identity, mirroring the onAuthStateChanged contract.
func (p *LocalProvider) Subscribe(fn Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.current
	p.mu.Unlock()

	p.dispatchMu.Lock()
	fn(cloneIdentity(current))
	p.dispatchMu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// CreateAccount registers a new account and signs it in.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strings.ToLower(email)

	p.mu.Lock()
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, email)
	}
	p.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &account{
		uid:          uuid.New().String(),
		email:        email,
		passwordHash: hash,
	}

	p.mu.Lock()
	p.accounts[key] = acc
	p.mu.Unlock()

	return p.setCurrent(acc), nil
}

// SignInPassword authenticates an existing account.
func (p *LocalProvider) SignInPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	acc, ok := p.accounts[strings.ToLower(email)]
	p.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return p.setCurrent(acc), nil
}

// SignInFederated signs in the preconfigured federated stub account,
// creating it on first use.
func (p *LocalProvider) SignInFederated(ctx context.Context) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strings.ToLower(p.federatedEmail)

	p.mu.Lock()
	acc, ok := p.accounts[key]
	if !ok {
		acc = &account{
			uid:         uuid.New().String(),
			email:       p.federatedEmail,
			displayName: p.federatedName,
		}
		p.accounts[key] = acc
	}
	p.mu.Unlock()

	return p.setCurrent(acc), nil
}

// SignInToken adopts the identity carried by a signed ID token.
func (p *LocalProvider) SignInToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims, err := p.codec.Verify(idToken)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(claims.Email)

	p.mu.Lock()
	acc, ok := p.accounts[key]
	if !ok {
		acc = &account{
			uid:         claims.UID,
			email:       claims.Email,
			displayName: claims.DisplayName,
			photoURL:    claims.PhotoURL,
		}
		p.accounts[key] = acc
	}
	p.mu.Unlock()

	return p.setCurrent(acc), nil
}

// UpdateDisplayName sets the display name on the signed-in account. No
// auth-state event is emitted; profile edits do not change the principal.
func (p *LocalProvider) UpdateDisplayName(ctx context.Context, displayName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ErrAccountNotFound
	}
	if acc, ok := p.accounts[strings.ToLower(p.current.Email)]; ok {
		acc.displayName = displayName
	}
	p.current.DisplayName = displayName
	return nil
}

// SignOut clears the signed-in identity and notifies listeners with nil.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = nil
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.notify(listeners, nil)
	return nil
}

// IDToken mints a signed ID token for the currently signed-in identity.
// Used by dev tooling to exercise the token sign-in endpoint.
func (p *LocalProvider) IDToken() (string, error) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return "", ErrAccountNotFound
	}
	return p.codec.Mint(current)
}

func (p *LocalProvider) setCurrent(acc *account) *domain.Identity {
	ident := &domain.Identity{
		UID:         acc.uid,
		Email:       acc.email,
		DisplayName: acc.displayName,
		PhotoURL:    acc.photoURL,
	}

	p.mu.Lock()
	p.current = ident
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	p.notify(listeners, ident)
	return cloneIdentity(ident)
}

// snapshotListeners must be called with mu held.
func (p *LocalProvider) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}

func (p *LocalProvider) notify(listeners []Listener, ident *domain.Identity) {
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()
	for _, fn := range listeners {
		fn(cloneIdentity(ident))
	}
}

func cloneIdentity(ident *domain.Identity) *domain.Identity {
	if ident == nil {
		return nil
	}
	c := *ident
	return &c
}
