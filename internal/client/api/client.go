package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/iudanet/winelog/pkg/api"
)

// accessCookie is the cookie the backend reads the access token from
const accessCookie = "access_token"

// Error is a non-2xx response of the backend
type Error struct {
	Detail string
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Detail)
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Requester sends HTTP requests, e.g. the session transport of a platform
type Requester interface {
	Request(ctx context.Context, req *http.Request) (*http.Response, error)
}

// httpRequester sends requests with a plain http.Client
type httpRequester struct {
	hc *http.Client
}

func (h httpRequester) Request(ctx context.Context, req *http.Request) (*http.Response, error) {
	return h.hc.Do(req.WithContext(ctx))
}

// Client is the HTTP client of the winelog backend
type Client struct {
	httpClient *http.Client
	requester  Requester
	logger     *zap.Logger
	baseURL    string

	mu     sync.RWMutex
	tokens oauth2.TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the client used for requests that must not follow redirects
// and, unless WithRequester is given, for every other request
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRequester routes requests through r, e.g. the platform's cookie session
func WithRequester(r Requester) Option {
	return func(c *Client) {
		c.requester = r
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an API client for baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.requester == nil {
		c.requester = httpRequester{hc: c.httpClient}
	}
	return c
}

// BaseURL returns the server URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource attaches bearer tokens from ts to authenticated requests.
// A nil source leaves authentication to the cookie jar of the HTTP client.
func (c *Client) SetTokenSource(ts oauth2.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// authorize sets the bearer token and mirrors it into the access token cookie
func (c *Client) authorize(req *http.Request) error {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return nil
	}

	tok, err := ts.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	tok.SetAuthHeader(req)
	if _, err := req.Cookie(accessCookie); err != nil && tok.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: tok.AccessToken})
	}
	return nil
}

// doRequest sends a JSON request and decodes a JSON response into result
func (c *Client) doRequest(ctx context.Context, authed bool, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	_, err = c.send(c.requester, req, authed, result)
	return err
}

// send executes req with r and decodes the response, returning it with its body consumed
func (c *Client) send(r Requester, req *http.Request, authed bool, result any) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if authed {
		if err := c.authorize(req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := r.Request(req.Context(), req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &Error{Status: resp.StatusCode, Detail: parseDetail(respBody, resp.Status)}
	}

	if result != nil && len(respBody) > 0 && resp.StatusCode < 300 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}

// parseDetail extracts the FastAPI detail, a string or a list of validation errors
func parseDetail(body []byte, status string) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != nil {
		switch d := errResp.Detail.(type) {
		case string:
			return d
		case []any:
			msgs := make([]string, 0, len(d))
			for _, item := range d {
				if m, ok := item.(map[string]any); ok {
					if msg, ok := m["msg"].(string); ok {
						msgs = append(msgs, msg)
						continue
					}
				}
				b, _ := json.Marshal(item)
				msgs = append(msgs, string(b))
			}
			return strings.Join(msgs, "; ")
		default:
			b, _ := json.Marshal(d)
			return string(b)
		}
	}

	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}
