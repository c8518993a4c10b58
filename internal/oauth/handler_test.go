package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestHandler(t *testing.T, tokenURL string) (*Handler, *Client) {
	t.Helper()
	config := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8420/oauth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://provider.example.com/authorize",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	client := NewClient(config, NewPendingTracker(), NewTokenSlot())
	t.Cleanup(client.Stop)
	return NewHandler(client), client
}

func initiateAndGetState(t *testing.T, client *Client) string {
	t.Helper()
	authURL, err := client.InitiateAuthentication(context.Background())
	if err != nil {
		t.Fatalf("InitiateAuthentication() error = %v", err)
	}
	parsed, _ := url.Parse(authURL)
	return parsed.Query().Get("state")
}

func TestHandleCallbackSuccess(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"granted","token_type":"Bearer","expires_in":3600}`))
	}))
	defer provider.Close()

	handler, client := newTestHandler(t, provider.URL)
	state := initiateAndGetState(t, client)

	// A login is waiting for the callback outcome.
	type outcome struct {
		code string
		err  error
	}
	awaited := make(chan outcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		code, err := client.Tracker().Await(ctx, state)
		awaited <- outcome{code, err}
	}()
	time.Sleep(20 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?code=auth-code&state="+url.QueryEscape(state), nil)
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Authentication Successful") {
		t.Error("success page not rendered")
	}
	if !client.IsAuthenticated() {
		t.Error("client not authenticated after successful callback")
	}

	got := <-awaited
	if got.err != nil {
		t.Fatalf("Await() error = %v", got.err)
	}
	if got.code != "auth-code" {
		t.Errorf("Await() code = %q, want %q", got.code, "auth-code")
	}
}

func TestHandleCallbackProviderError(t *testing.T) {
	handler, client := newTestHandler(t, "https://provider.example.com/token")
	state := initiateAndGetState(t, client)

	awaited := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := client.Tracker().Await(ctx, state)
		awaited <- err
	}()
	time.Sleep(20 * time.Millisecond)

	target := "/oauth/callback?error=access_denied&error_description=User+refused&state=" + url.QueryEscape(state)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Authentication Failed") {
		t.Error("error page not rendered")
	}

	// The waiting login receives the provider's error text.
	err := <-awaited
	var authErr *AuthenticationFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("Await() error type = %T, want *AuthenticationFailedError", err)
	}
	if !strings.Contains(authErr.Reason, "access_denied") || !strings.Contains(authErr.Reason, "User refused") {
		t.Errorf("Reason = %q, want provider error and description", authErr.Reason)
	}
}

func TestHandleCallbackMissingParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"no params", "/oauth/callback"},
		{"missing state", "/oauth/callback?code=abc"},
		{"missing code", "/oauth/callback?state=xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, "https://provider.example.com/token")

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler.HandleCallback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleCallbackUnknownState(t *testing.T) {
	handler, client := newTestHandler(t, "https://provider.example.com/token")

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?code=abc&state=forged", nil)
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if client.IsAuthenticated() {
		t.Error("forged callback authenticated the client")
	}
}

func TestHandleCallbackExchangeFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer provider.Close()

	handler, client := newTestHandler(t, provider.URL)
	state := initiateAndGetState(t, client)

	awaited := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := client.Tracker().Await(ctx, state)
		awaited <- err
	}()
	time.Sleep(20 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback?code=bad&state="+url.QueryEscape(state), nil)
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if client.IsAuthenticated() {
		t.Error("failed exchange authenticated the client")
	}

	// The waiting login is failed, not left hanging.
	err := <-awaited
	var authErr *AuthenticationFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("Await() error type = %T, want *AuthenticationFailedError", err)
	}
}

func TestHandleCallbackErrorPageEscapesMessage(t *testing.T) {
	handler, _ := newTestHandler(t, "https://provider.example.com/token")

	target := "/oauth/callback?error=" + url.QueryEscape("<script>alert(1)</script>")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.HandleCallback(rec, req)

	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("provider-controlled error text rendered unescaped")
	}
}
