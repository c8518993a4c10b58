package oauth

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"subgate/pkg/logging"
)

// Handler serves the OAuth redirect/callback endpoint. The provider sends
// the browser here with code+state on success or error+error_description on
// failure; either way the outcome is correlated back to the pending
// authorization via state.
type Handler struct {
	client *Client
}

// NewHandler creates a new OAuth callback handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client: client,
	}
}

// HandleCallback handles the OAuth callback endpoint.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	errorParam := query.Get("error")
	errorDesc := query.Get("error_description")

	// Provider-reported failure: deliver the provider's error text to the
	// waiting login, then tell the user.
	if errorParam != "" {
		logging.Warn("OAuth", "Callback received error: %s - %s", errorParam, errorDesc)
		reason := errorParam
		if errorDesc != "" {
			reason = fmt.Sprintf("%s: %s", errorParam, errorDesc)
		}
		h.client.Tracker().Fail(state, errors.New(reason))
		h.renderErrorPage(w, fmt.Sprintf("Authentication failed: %s", reason))
		return
	}

	if code == "" || state == "" {
		logging.Warn("OAuth", "Callback missing code or state parameter")
		h.renderErrorPage(w, "Invalid callback: missing required parameters")
		return
	}

	ok, err := h.client.CompleteAuthentication(r.Context(), code, state)
	if err != nil {
		// Unknown state: expired, already consumed, or forged.
		logging.Warn("OAuth", "Callback with invalid or expired state")
		h.renderErrorPage(w, "Authentication session expired. Please try again.")
		return
	}
	if !ok {
		exchangeErr := errors.New("token exchange with provider failed")
		h.client.Tracker().Fail(state, exchangeErr)
		h.renderErrorPage(w, "Failed to complete authentication. Please try again.")
		return
	}

	h.client.Tracker().Resolve(state, code)
	logging.Info("OAuth", "Successfully authenticated state=%s", shortState(state))
	h.renderSuccessPage(w)
}

// setSecurityHeaders sets recommended security headers for HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

// renderSuccessPage renders an HTML page indicating successful authentication.
func (h *Handler) renderSuccessPage(w http.ResponseWriter) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Successful - subgate</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #16213e; color: #e8e8e8; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; }
        .container { text-align: center; padding: 3rem; background: rgba(255,255,255,0.05); border-radius: 16px; max-width: 480px; }
        h1 { color: #fff; font-size: 1.5rem; }
        p { color: #a0a0a0; line-height: 1.6; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authentication Successful</h1>
        <p>You can now close this window and return to your client.</p>
        <p>Retry the previous command to continue.</p>
    </div>
</body>
</html>`

	w.Write([]byte(htmlContent))
}

// renderErrorPage renders an HTML page indicating an authentication error.
func (h *Handler) renderErrorPage(w http.ResponseWriter, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)

	// Escape message to prevent XSS attacks
	safeMessage := html.EscapeString(message)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Failed - subgate</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #16213e; color: #e8e8e8; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; }
        .container { text-align: center; padding: 3rem; background: rgba(255,255,255,0.05); border-radius: 16px; max-width: 480px; }
        h1 { color: #fff; font-size: 1.5rem; }
        .message { color: #ff6b6b; }
        p { color: #a0a0a0; line-height: 1.6; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authentication Failed</h1>
        <p class="message">%s</p>
        <p>Please close this window and try again.</p>
    </div>
</body>
</html>`, safeMessage)

	w.Write([]byte(htmlContent))
}
