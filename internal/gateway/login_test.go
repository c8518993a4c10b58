package gateway

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLoginWaitTimesOut(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	start := time.Now()
	result, err := server.handleLogin(context.Background(), toolRequest(map[string]interface{}{
		"wait_seconds": 0.1,
	}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "not completed within the wait window")
	assert.Less(t, time.Since(start), 2*time.Second)

	// The abandoned wait released its pending entry.
	assert.Zero(t, server.oauth.Tracker().Count())
}

func TestHandleLoginWaitInvalid(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, wait := range []interface{}{"soon", float64(0), float64(-1)} {
		result, err := server.handleLogin(context.Background(), toolRequest(map[string]interface{}{
			"wait_seconds": wait,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "wait_seconds")
	}
}

func TestAwaitLoginResolved(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	authURL, err := server.oauth.InitiateAuthentication(context.Background())
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		result, err := server.awaitLogin(context.Background(), authURL, 5*time.Second)
		if err != nil {
			t.Errorf("awaitLogin() error = %v", err)
			return
		}
		done <- result
	}()

	// Resolve the way the callback handler would after a successful
	// exchange.
	time.Sleep(20 * time.Millisecond)
	server.oauth.Tracker().Resolve(state, "auth-code")

	select {
	case result := <-done:
		assert.False(t, result.IsError)
		assert.Contains(t, textContent(t, result), "authenticated")
	case <-time.After(3 * time.Second):
		t.Fatal("waiting login did not return after resolution")
	}
}

func TestAwaitLoginSessionExpired(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	authURL, err := server.oauth.InitiateAuthentication(context.Background())
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	// The callback lands before anyone waits, so the entry is already gone
	// by the time the login call starts waiting.
	server.oauth.Tracker().Resolve(state, "auth-code")
	require.Zero(t, server.oauth.Tracker().Count())

	result, err := server.awaitLogin(context.Background(), authURL, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "login session expired")
}

func TestAwaitLoginProviderFailure(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	authURL, err := server.oauth.InitiateAuthentication(context.Background())
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		result, err := server.awaitLogin(context.Background(), authURL, 5*time.Second)
		if err != nil {
			t.Errorf("awaitLogin() error = %v", err)
			return
		}
		done <- result
	}()

	time.Sleep(20 * time.Millisecond)
	server.oauth.Tracker().Fail(state, assert.AnError)

	select {
	case result := <-done:
		assert.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "login failed")
	case <-time.After(3 * time.Second):
		t.Fatal("waiting login did not return after failure")
	}
}
