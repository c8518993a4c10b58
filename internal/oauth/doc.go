// Package oauth implements the client side of the gateway's authentication
// pipeline: the OAuth2 authorization-code-with-PKCE flow against the
// identity provider, the tracking of concurrent in-flight authorizations,
// and the single current-token slot per token purpose.
//
// The components map onto the flow as follows:
//
//   - GenerateVerifier/GenerateChallenge produce the PKCE pair bound into
//     each authorization URL.
//   - PendingTracker correlates the provider's eventual redirect callback
//     (carrying code+state) back to whichever login initiated it, across
//     separate HTTP requests and with many logins in flight at once. Each
//     state is consumable exactly once.
//   - Client builds authorization URLs, redeems authorization codes at the
//     token endpoint, and owns the caller-side TokenSlot.
//   - Handler serves the redirect/callback endpoint.
//   - TokenSlot is the atomically replaced current-token record, also used
//     by the server side for the downstream-delegated token.
//
// Tokens are handed out only while fresh (more than FreshnessMargin from
// expiry); there is no refresh flow, expiry means re-authentication.
package oauth
