package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"subgate/pkg/logging"
)

// Client runs the authorization-code-with-PKCE flow against the identity
// provider and owns the caller-side token slot. Any number of logins may be
// in flight at once; each holds its own state and code verifier, so
// concurrent completions for distinct states do not interfere.
type Client struct {
	config  *oauth2.Config
	tracker *PendingTracker
	slot    *TokenSlot

	// httpClient is injected into the oauth2 exchange via context.
	httpClient *http.Client
}

// NewClient creates an OAuth client for the given provider configuration.
// The pending tracker and token slot are injected so they can be shared
// with the callback handler and inspected by tests.
func NewClient(config *oauth2.Config, tracker *PendingTracker, slot *TokenSlot) *Client {
	return &Client{
		config:     config,
		tracker:    tracker,
		slot:       slot,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Tracker returns the pending-authorization tracker for external access.
func (c *Client) Tracker() *PendingTracker {
	return c.tracker
}

// Slot returns the caller-side token slot for external access.
func (c *Client) Slot() *TokenSlot {
	return c.slot
}

// InitiateAuthentication generates a PKCE pair, registers the state and
// verifier with the tracker, and returns the provider authorization URL
// the user must visit. The URL carries client_id, response_type=code,
// redirect_uri, the space-joined scopes, state, and the S256 challenge.
func (c *Client) InitiateAuthentication(ctx context.Context) (string, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}
	challenge := GenerateChallenge(verifier)

	state, err := c.tracker.Create(verifier)
	if err != nil {
		return "", fmt.Errorf("failed to register pending authorization: %w", err)
	}

	authURL := c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	logging.Debug("OAuth", "Initiated authentication state=%s", shortState(state))
	return authURL, nil
}

// AwaitCallback blocks until the provider calls back for state, the context
// is canceled, or the pending authorization is gone. Returns the delivered
// authorization code; provider failures surface as
// *AuthenticationFailedError.
func (c *Client) AwaitCallback(ctx context.Context, state string) (string, error) {
	return c.tracker.Await(ctx, state)
}

// CompleteAuthentication redeems an authorization code: it consumes the
// PKCE verifier registered for state and exchanges code+verifier at the
// provider token endpoint. On success the caller-side token slot is
// replaced atomically and true is returned.
//
// An unknown (expired, consumed, or forged) state is not correctable and
// returns an error. Exchange failures against the provider (HTTP errors,
// malformed responses) are correctable: they return false with the token
// slot untouched, so the login can be retried from the top.
func (c *Client) CompleteAuthentication(ctx context.Context, code, state string) (bool, error) {
	verifier, ok := c.tracker.PopVerifier(state)
	if !ok {
		return false, fmt.Errorf("unknown state: no pending authorization")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		logging.Warn("OAuth", "Token exchange failed: %v", err)
		return false, nil
	}

	c.slot.Set(token)
	logging.Debug("OAuth", "Completed authentication, token expires at %s", token.Expiry.Format(time.RFC3339))
	return true, nil
}

// GetAccessToken returns the current access token when it is still fresh,
// or the empty string when no usable token is held. There is no silent
// refresh: a stale token means the user has to authenticate again.
func (c *Client) GetAccessToken() string {
	token := c.slot.Get()
	if token == nil {
		return ""
	}
	return token.AccessToken
}

// IsAuthenticated reports whether a fresh access token is held.
func (c *Client) IsAuthenticated() bool {
	return c.slot.Get() != nil
}

// Stop stops the tracker's background cleanup goroutine.
func (c *Client) Stop() {
	c.tracker.Stop()
}
