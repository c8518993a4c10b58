// Package downstream holds the HTTP client for the Submission API the
// gateway proxies, together with the typed errors distinguishing an API
// that answered badly from an API that was never reached.
package downstream
