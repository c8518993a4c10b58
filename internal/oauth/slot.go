package oauth

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// FreshnessMargin is the minimum remaining lifetime a token must have to
// be handed out. Tokens closer than this to expiry are treated as stale so
// a downstream call never departs with a token that expires mid-flight.
const FreshnessMargin = 5 * time.Minute

// TokenSlot holds the current access token for one purpose (caller-side or
// downstream-delegated). It is a single-writer/many-reader cell: the owning
// exchange client replaces the record atomically, and readers never observe
// a half-updated value.
//
// The slot is an explicitly owned, injectable instance; construct one per
// token purpose and pass it by reference.
type TokenSlot struct {
	mu     sync.RWMutex
	record *oauth2.Token
}

// NewTokenSlot creates an empty token slot.
func NewTokenSlot() *TokenSlot {
	return &TokenSlot{}
}

// Set atomically replaces the current token record.
func (s *TokenSlot) Set(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = token
}

// Get returns the current token if it is fresh (expiry is known and more
// than FreshnessMargin away), nil otherwise. Stale tokens are never
// returned; callers must re-authenticate instead.
func (s *TokenSlot) Get() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !fresh(s.record) {
		return nil
	}
	return s.record
}

// Clear drops the current token record.
func (s *TokenSlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
}

func fresh(token *oauth2.Token) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return false
	}
	return time.Until(token.Expiry) > FreshnessMargin
}
