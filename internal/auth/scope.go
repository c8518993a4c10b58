package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeValidator checks, fully offline, whether a bearer token carries a
// required scope and has not expired.
//
// Signature verification is deliberately not performed: the gateway trusts
// its fronting infrastructure to have authenticated the caller, and this
// validator only inspects claims. Revisit as an explicit configuration
// decision before exposing the gateway without such infrastructure.
type ScopeValidator struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewScopeValidator creates a scope validator.
func NewScopeValidator() *ScopeValidator {
	return &ScopeValidator{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
		now:    time.Now,
	}
}

// HasRequiredScope reports whether token is a well-formed, unexpired JWT
// whose space-delimited "scope" claim contains requiredScope as a whole
// token. The match is exact and case-sensitive: a granted
// "submission-api-read" does not satisfy a required "submission-api".
//
// This is a boolean predicate that never panics and never returns an
// error: blank inputs, non-JWT garbage, undecodable segments, a missing or
// non-numeric exp, and a missing or non-string scope claim all yield false.
func (v *ScopeValidator) HasRequiredScope(token, requiredScope string) bool {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(requiredScope) == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	// Exact comparison, no grace margin: a token is expired the instant
	// now >= exp.
	if !v.now().Before(exp.Time) {
		return false
	}

	raw, ok := claims["scope"].(string)
	if !ok {
		return false
	}
	for _, granted := range strings.Fields(raw) {
		if granted == requiredScope {
			return true
		}
	}
	return false
}
