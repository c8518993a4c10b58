package auth

import (
	"context"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"subgate/internal/oauth"
	"subgate/pkg/logging"
)

// DelegatedTokenSource obtains and caches the token the gateway itself uses
// to call the downstream API. It is negotiated with a client-credentials
// grant scoped to the downstream API, completely independent of whatever
// token the caller presented.
//
// The current token lives in its own slot under the same freshness
// discipline as the caller-side token; concurrent cache misses are
// deduplicated so the provider sees at most one exchange at a time.
type DelegatedTokenSource struct {
	config *clientcredentials.Config
	slot   *oauth.TokenSlot
	group  singleflight.Group
}

// NewDelegatedTokenSource creates a delegated token source with its own
// token slot.
func NewDelegatedTokenSource(config *clientcredentials.Config, slot *oauth.TokenSlot) *DelegatedTokenSource {
	return &DelegatedTokenSource{
		config: config,
		slot:   slot,
	}
}

// AccessToken returns a fresh downstream-scoped access token, exchanging
// client credentials at the provider when the cached one is stale. Failure
// surfaces as *UpstreamAuthFailureError; the provider's response stays in
// the wrapped error and out of caller-visible messages.
func (d *DelegatedTokenSource) AccessToken(ctx context.Context) (string, error) {
	if token := d.slot.Get(); token != nil {
		return token.AccessToken, nil
	}

	result, err, _ := d.group.Do("downstream", func() (interface{}, error) {
		// Re-check after winning the flight; a concurrent caller may have
		// refreshed the slot already.
		if token := d.slot.Get(); token != nil {
			return token.AccessToken, nil
		}

		token, err := d.config.Token(ctx)
		if err != nil {
			logging.Warn("Auth", "Client-credentials exchange failed: %v", err)
			return "", &UpstreamAuthFailureError{Err: err}
		}

		d.slot.Set(token)
		logging.Debug("Auth", "Acquired delegated downstream token, expires at %s", token.Expiry)
		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
