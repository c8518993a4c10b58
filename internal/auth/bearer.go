package auth

import (
	"context"
	"net/http"
	"strings"
)

// bearerPrefix is the exact, case-sensitive scheme prefix accepted on the
// Authorization header. "bearer x", "Bearer  x" (double space) and other
// variants are rejected.
const bearerPrefix = "Bearer "

// headerContextKey is the context key under which inbound request headers
// are stashed by the transport layer.
type headerContextKey struct{}

// WithHeaders returns a context carrying the inbound request headers, for
// the transport layer to install on every tool invocation.
func WithHeaders(ctx context.Context, headers http.Header) context.Context {
	return context.WithValue(ctx, headerContextKey{}, headers)
}

// HeadersFromContext returns the inbound request headers, if any.
func HeadersFromContext(ctx context.Context) (http.Header, bool) {
	headers, ok := ctx.Value(headerContextKey{}).(http.Header)
	return headers, ok
}

// ExtractBearer parses the inbound call's Authorization header into the raw
// token string. It fails with ErrAuthContextUnavailable when no request
// context exists at all, and with *CredentialError for a missing header,
// another scheme, or an empty token value. No network access happens here.
func ExtractBearer(ctx context.Context) (string, error) {
	headers, ok := HeadersFromContext(ctx)
	if !ok {
		return "", ErrAuthContextUnavailable
	}

	value := headers.Get("Authorization")
	if value == "" {
		return "", &CredentialError{Reason: "missing Authorization header"}
	}
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", &CredentialError{Reason: "Authorization header is not a Bearer credential"}
	}

	token := value[len(bearerPrefix):]
	if strings.TrimSpace(token) == "" {
		return "", &CredentialError{Reason: "empty bearer token"}
	}
	// Exactly one space separates scheme and token. "Bearer  x" leaves a
	// leading space here and is malformed, not a usable credential.
	if token != strings.TrimSpace(token) {
		return "", &CredentialError{Reason: "bearer token has surrounding whitespace"}
	}
	return token, nil
}
