package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subgate/pkg/logging"
)

// productName is the product component of the fixed User-Agent every
// downstream request carries.
const productName = "subgate"

// Request describes one downstream API call: resource path relative to the
// base URL, optional query, optional JSON body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Client is the bearer-authenticated JSON client for the downstream API.
// It classifies every outcome into exactly one of: raw 2xx body,
// *HTTPError (non-2xx, status and body verbatim), or *TransportError
// (the API was never reached). It never retries; resilience policy is the
// caller's concern.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a downstream API client. version becomes part of the
// fixed product/version User-Agent.
func NewClient(baseURL, version string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  fmt.Sprintf("%s/%s", productName, version),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UserAgent returns the fixed User-Agent sent on every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Do issues one downstream call with the given delegated bearer token and
// returns the raw response body of a 2xx answer. Context cancellation
// propagates straight into the HTTP call.
func (c *Client) Do(ctx context.Context, req *Request, bearerToken string) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build downstream request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debug("Downstream", "%s %s answered %d", req.Method, req.Path, resp.StatusCode)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
