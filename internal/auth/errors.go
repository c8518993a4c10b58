package auth

import (
	"errors"
	"fmt"
)

// ErrAuthContextUnavailable is returned when a tool invocation arrives with
// no request context at all, as opposed to a request that merely lacks a
// usable Authorization header.
var ErrAuthContextUnavailable = errors.New("authentication context unavailable: no request headers in call context")

// CredentialError indicates the inbound call carried no valid bearer
// credential: the Authorization header was absent, used another scheme, or
// had an empty value. It is raised before any network access.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("no valid bearer token: %s", e.Reason)
}

// InsufficientScopeError indicates the presented token parsed but was
// expired or did not carry the required scope. Distinct from
// CredentialError so callers can tell "fix your header" from "get a better
// token".
type InsufficientScopeError struct {
	RequiredScope string
}

func (e *InsufficientScopeError) Error() string {
	return fmt.Sprintf("token is expired or lacks required scope %q", e.RequiredScope)
}

// UpstreamAuthFailureError indicates the gateway itself failed to obtain a
// delegated token from the identity provider. The provider's response is
// kept in Err for logs; Error() stays caller-safe and does not leak
// provider internals.
type UpstreamAuthFailureError struct {
	Err error
}

func (e *UpstreamAuthFailureError) Error() string {
	return "authentication with upstream provider failed"
}

func (e *UpstreamAuthFailureError) Unwrap() error {
	return e.Err
}

// ValidationError indicates an invalid input parameter on a tool call. It
// names the offending parameter and is raised before any credential or
// network work happens.
type ValidationError struct {
	Parameter string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Parameter, e.Reason)
}
