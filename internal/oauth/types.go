package oauth

import "fmt"

// AuthenticationFailedError is raised to a waiting login when the provider
// reports a failure on the callback, or when a pending authorization
// expires before the provider calls back. Reason carries the provider's
// error text verbatim.
type AuthenticationFailedError struct {
	Reason string
	Err    error
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthenticationFailedError) Unwrap() error {
	return e.Err
}

// shortState abbreviates a state value for log output. States are opaque
// secrets while pending; only a prefix is ever logged.
func shortState(state string) string {
	if len(state) > 8 {
		return state[:8]
	}
	return state
}

// AuthChallenge is returned by the login tool when a caller has to
// authenticate interactively before using the gateway.
type AuthChallenge struct {
	// Status indicates this is an auth required response.
	Status string `json:"status"` // "auth_required"

	// AuthURL is the provider authorization URL the user should visit.
	AuthURL string `json:"auth_url"`

	// Message is a human-readable description of what to do.
	Message string `json:"message,omitempty"`
}
