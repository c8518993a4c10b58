package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"subgate/pkg/logging"
)

// PendingAuthorization tracks a single in-flight authorization-code
// negotiation between the moment the authorization URL is handed out and
// the moment the provider calls back with a code (or an error).
type PendingAuthorization struct {
	// State is the opaque value round-tripped through the provider redirect.
	State string

	// CreatedAt is when the negotiation started (for expiration).
	CreatedAt time.Time

	mu           sync.Mutex
	codeVerifier string // cleared once consumed by the token exchange
	resolved     bool
	code         string
	err          error
	done         chan struct{}

	// awaited records that a caller is blocked in Await and will remove the
	// entry itself. Guarded by the tracker's mutex, not the entry's.
	awaited bool
}

// complete resolves the pending authorization exactly once. Later calls
// are no-ops, so a replayed callback cannot re-resolve a consumed state.
func (p *PendingAuthorization) complete(code string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return
	}
	p.resolved = true
	p.code = code
	p.err = err
	close(p.done)
}

// popVerifier returns the code verifier and clears it, so each verifier
// can be used for at most one token exchange.
func (p *PendingAuthorization) popVerifier() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codeVerifier == "" {
		return "", false
	}
	verifier := p.codeVerifier
	p.codeVerifier = ""
	return verifier, true
}

// PendingTracker is a thread-safe registry of in-flight authorization
// negotiations, keyed by state. It decouples "authorization URL issued"
// from "provider called back": the two happen on separate requests, with
// any number of logins in flight concurrently.
type PendingTracker struct {
	mu      sync.Mutex
	entries map[string]*PendingAuthorization

	// Expiration configuration
	pendingTTL  time.Duration
	stopCleanup chan struct{}
}

// defaultPendingTTL is how long an unconsumed pending authorization is
// kept before the background sweep removes it.
const defaultPendingTTL = 10 * time.Minute

// NewPendingTracker creates a tracker with the default expiration and
// starts its background cleanup goroutine.
func NewPendingTracker() *PendingTracker {
	t := &PendingTracker{
		entries:     make(map[string]*PendingAuthorization),
		pendingTTL:  defaultPendingTTL,
		stopCleanup: make(chan struct{}),
	}

	go t.cleanupLoop()

	return t
}

// Create allocates a new state value, registers a pending authorization
// holding the given PKCE code verifier, and returns the state. Safe under
// concurrent creation; every state is unique.
func (t *PendingTracker) Create(codeVerifier string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(nonce)

	entry := &PendingAuthorization{
		State:        state,
		CreatedAt:    time.Now(),
		codeVerifier: codeVerifier,
		done:         make(chan struct{}),
	}

	t.mu.Lock()
	t.entries[state] = entry
	t.mu.Unlock()

	logging.Debug("OAuth", "Created pending authorization state=%s", shortState(state))
	return state, nil
}

// Await suspends until the pending authorization for state is resolved,
// the context is canceled, or the entry does not exist. On every exit path
// the entry is removed from the tracker.
//
// Returns the authorization code on resolution. A provider-delivered error
// surfaces as *AuthenticationFailedError; cancellation surfaces as the
// context's error. An absent (expired, consumed, or never-created) state
// returns ("", nil) immediately.
func (t *PendingTracker) Await(ctx context.Context, state string) (string, error) {
	t.mu.Lock()
	entry, exists := t.entries[state]
	if exists {
		entry.awaited = true
	}
	t.mu.Unlock()

	if !exists {
		return "", nil
	}
	defer t.remove(state)

	select {
	case <-entry.done:
		entry.mu.Lock()
		code, err := entry.code, entry.err
		entry.mu.Unlock()
		if err != nil {
			return "", &AuthenticationFailedError{Reason: err.Error(), Err: err}
		}
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve delivers an authorization code to whatever caller is awaiting
// state. An unknown state is a silent no-op: it never errors and never
// creates new entries, so forged or replayed callbacks have no effect.
// When no caller is awaiting the state, the entry is removed here so a
// completed login never lingers in the map.
func (t *PendingTracker) Resolve(state, code string) {
	t.complete(state, code, nil)
}

// Fail delivers a provider-side failure to whatever caller is awaiting
// state. Like Resolve, an unknown state is a silent no-op.
func (t *PendingTracker) Fail(state string, err error) {
	t.complete(state, "", err)
}

func (t *PendingTracker) complete(state, code string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[state]
	if !exists {
		logging.Debug("OAuth", "Completion for unknown state, ignoring")
		return
	}
	entry.complete(code, err)
	if !entry.awaited {
		delete(t.entries, state)
	}
}

// PopVerifier consumes the PKCE code verifier registered for state.
// Returns false if the state is unknown or its verifier was already
// consumed, which makes authorization codes single-redeem.
func (t *PendingTracker) PopVerifier(state string) (string, bool) {
	t.mu.Lock()
	entry, exists := t.entries[state]
	t.mu.Unlock()

	if !exists {
		return "", false
	}
	return entry.popVerifier()
}

// remove deletes an entry from the tracker.
func (t *PendingTracker) remove(state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, state)
}

// Count returns the number of pending authorizations.
func (t *PendingTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Stop stops the background cleanup goroutine.
func (t *PendingTracker) Stop() {
	close(t.stopCleanup)
}

// cleanupLoop periodically removes expired pending authorizations so
// abandoned logins do not leak entries.
func (t *PendingTracker) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanup()
		case <-t.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired entries, failing any waiter still attached.
func (t *PendingTracker) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for state, entry := range t.entries {
		if time.Since(entry.CreatedAt) > t.pendingTTL {
			entry.complete("", &AuthenticationFailedError{Reason: "authorization request expired"})
			delete(t.entries, state)
			count++
		}
	}

	if count > 0 {
		logging.Debug("OAuth", "Cleaned up %d expired pending authorizations", count)
	}
}
