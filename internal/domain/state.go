package domain

// AuthState is the resolved authentication state derived from a Snapshot.
// It makes the "logged in but unresolved role" case explicit so guards can
// match exhaustively instead of duck-typing nil checks.
type AuthState int

const (
	// StateUnresolved means a resolution is in flight; consumers must wait.
	StateUnresolved AuthState = iota
	// StateAnonymous means no identity is signed in.
	StateAnonymous
	// StateAuthenticatedUnroled means an identity is signed in but the
	// profile fetch failed or has not produced a record.
	StateAuthenticatedUnroled
	// StateAuthenticatedRoled means an identity is signed in and its profile
	// (and therefore role) is known.
	StateAuthenticatedRoled
)

func (s AuthState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticatedUnroled:
		return "authenticated_unroled"
	case StateAuthenticatedRoled:
		return "authenticated_roled"
	default:
		return "unknown"
	}
}

// Snapshot is the three-field tuple exposed by the session manager. It is
// written exclusively by the manager and read-only everywhere else.
type Snapshot struct {
	Identity *Identity `json:"user"`
	Profile  *Profile  `json:"profile"`
	Loading  bool      `json:"loading"`
}

// State derives the AuthState enum from the tuple. The Profile is non-nil
// only when Identity is non-nil and the fetch succeeded.
func (s Snapshot) State() AuthState {
	switch {
	case s.Loading:
		return StateUnresolved
	case s.Identity == nil:
		return StateAnonymous
	case s.Profile == nil:
		return StateAuthenticatedUnroled
	default:
		return StateAuthenticatedRoled
	}
}
