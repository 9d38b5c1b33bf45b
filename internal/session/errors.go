package session

import "errors"

// Error taxonomy for session operations.
//
// ErrIdentity covers failures of identity-mutating operations (bad
// credentials, cancelled federated flow, network failure during sign-in/up);
// it is surfaced to callers and leaves the exposed state unchanged.
//
// ErrSessionExchange and ErrProfileFetch are resolution-side failures. The
// background resolver never surfaces them as hard errors: a failed exchange
// aborts the profile fetch and a failed fetch leaves the profile nil, so the
// application degrades to a guest-like view for a technically authenticated
// identity.
var (
	ErrIdentity        = errors.New("identity operation failed")
	ErrSessionExchange = errors.New("session exchange failed")
	ErrProfileFetch    = errors.New("profile fetch failed")
)
