// ABOUTME: HTTP client for the news aggregation backend
// ABOUTME: Wraps API calls with structured error handling for CLI and TUI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token for authenticated calls.
// An empty return means no token is held.
type TokenSource func() string

// Client is the API client for the news aggregation backend
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the default request timeout
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// SetTokenSource installs the bearer token supplier for authenticated calls
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokenSource = ts
}

// BaseURL returns the configured backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the common response wrapper used by every auth endpoint
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

// newRequest builds a request with the common headers and a request ID
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// authorize attaches the bearer token if one is held
func (c *Client) authorize(req *http.Request) {
	if c.tokenSource == nil {
		return
	}
	if token := c.tokenSource(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// doEnvelope executes a request against an envelope-shaped endpoint and
// decodes data into out when the call succeeds. Failed calls come back as
// *Failure so the caller branches on the kind, never on the raw payload.
func (c *Client) doEnvelope(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return &Failure{Kind: KindUnauthorized, Status: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return &Failure{
				Kind:    KindMessage,
				Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
				Status:  resp.StatusCode,
			}
		}
		return &Failure{Kind: KindNetwork, Message: "invalid response from backend"}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &Failure{Kind: KindUnauthorized, Message: env.Message, Status: resp.StatusCode}
	}

	if resp.StatusCode >= 400 || !env.Success {
		if len(env.Errors) > 0 {
			return &Failure{Kind: KindFieldErrors, Message: env.Message, Fields: env.Errors, Status: resp.StatusCode}
		}
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return &Failure{Kind: KindMessage, Message: msg, Status: resp.StatusCode}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Failure{Kind: KindNetwork, Message: "invalid response from backend"}
		}
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return &Failure{Kind: KindNetwork, Message: "request canceled"}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &Failure{Kind: KindNetwork, Message: "request timed out"}
	}
	return networkFailure(c.baseURL, err)
}
