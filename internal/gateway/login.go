package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"subgate/internal/oauth"
)

// handleLogin starts a fresh authorization-code flow and hands the
// authorization URL back to the caller. Multiple logins may be pending at
// once; each gets its own state.
//
// With wait_seconds set, the call blocks until the browser flow completes
// (or the wait expires) and reports the outcome instead of just the URL.
func (s *Server) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	wait := time.Duration(0)
	if raw, exists := args["wait_seconds"]; exists {
		seconds, ok := raw.(float64)
		if !ok || seconds <= 0 {
			return mcp.NewToolResultError("invalid parameter \"wait_seconds\": must be a positive number"), nil
		}
		wait = time.Duration(seconds * float64(time.Second))
	}

	authURL, err := s.oauth.InitiateAuthentication(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start login: %v", err)), nil
	}

	if wait > 0 {
		return s.awaitLogin(ctx, authURL, wait)
	}

	challenge := oauth.AuthChallenge{
		Status:  "auth_required",
		AuthURL: authURL,
		Message: "Open the URL in your browser and complete the login. The gateway picks the token up on the callback.",
	}
	data, err := json.MarshalIndent(challenge, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format login challenge: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// awaitLogin blocks until the provider calls back for the login just
// started, then reports whether a token was obtained.
func (s *Server) awaitLogin(ctx context.Context, authURL string, wait time.Duration) (*mcp.CallToolResult, error) {
	parsed, err := url.Parse(authURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse authorization URL: %v", err)), nil
	}
	state := parsed.Query().Get("state")

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	code, err := s.oauth.AwaitCallback(waitCtx, state)
	if err != nil {
		if waitCtx.Err() != nil {
			return mcp.NewToolResultError("login not completed within the wait window; retry or use auth_status"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("login failed: %v", err)), nil
	}
	// An empty code with no error means the state is gone: expired, already
	// consumed, or never tracked. Not a completed login.
	if code == "" {
		return mcp.NewToolResultError("login session expired; start a new login"), nil
	}

	return jsonResult(map[string]interface{}{
		"status":        "authenticated",
		"authenticated": s.oauth.IsAuthenticated(),
	})
}

// handleAuthStatus reports whether a fresh user token is currently held.
func (s *Server) handleAuthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := map[string]interface{}{
		"authenticated":  s.oauth.IsAuthenticated(),
		"pending_logins": s.oauth.Tracker().Count(),
		"access_token":   oauth.NewRedactedToken(s.oauth.GetAccessToken()),
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
