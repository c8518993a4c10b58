// Package auth implements the server side of the gateway's authentication
// pipeline: extracting the caller's bearer token from the per-call context,
// validating its scope claim offline, and acquiring the separate delegated
// token used to call the downstream API. It also defines the typed errors
// the tool invoker maps every authentication failure onto.
package auth
