// Package api is the HTTP client for the Data Manager API: task pages (which
// carry the boxes metric), project fields and saved views.
package api

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

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/logging"
)

const (
	// defaultTimeout is the request timeout when none is configured.
	defaultTimeout = 10 * time.Second

	// defaultAuthScheme prefixes the token in the Authorization header.
	defaultAuthScheme = "Token"

	// maxErrorBody caps how much of an error response is kept for the message.
	maxErrorBody = 512
)

// Client talks to one Data Manager deployment.
type Client struct {
	baseURL    *url.URL
	headers    http.Header
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets "Authorization: <scheme> <token>" on every request.
// An empty scheme defaults to "Token".
func WithToken(scheme, token string) ClientOption {
	return func(c *Client) {
		if token == "" {
			return
		}
		if scheme == "" {
			scheme = defaultAuthScheme
		}
		c.headers.Set("Authorization", scheme+" "+token)
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. with an
// httptest server's client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		timeout := c.httpClient.Timeout
		c.httpClient = hc
		if c.httpClient.Timeout == 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.OrNop(l).WithComponent("api")
	}
}

// NewClient creates a client for baseURL, which must be an absolute
// http(s) URL. An empty baseURL yields ErrNoEndpoint.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.ErrNoEndpoint
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewValidationError("base URL must be an absolute http(s) URL").
			WithField("api.base_url").WithValue(baseURL)
	}

	c := &Client{
		baseURL: u,
		headers: http.Header{},
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logging.NopLogger(),
	}
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Headers returns a copy of the headers sent with every request. The store
// exposes these as its common headers.
func (c *Client) Headers() http.Header { return c.headers.Clone() }

// endpoint joins path onto the base URL and attaches query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends a request and decodes a JSON response into out (when non-nil).
// extra headers override the client's own for this request only.
func (c *Client) do(ctx context.Context, method, endpoint string, extra http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.NewFetchError("create request", err).WithURL(endpoint)
	}
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		req.Header[k] = append([]string(nil), vs...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewFetchError("read response", err).WithURL(endpoint).WithStatus(resp.StatusCode)
	}

	c.logger.Debug("api request",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return errors.NewFetchError(fmt.Sprintf("API error: %s", msg), nil).WithURL(endpoint).WithStatus(resp.StatusCode)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewFetchError("decode response", errors.Join(errors.ErrMalformedResponse, err)).
			WithURL(endpoint).WithStatus(resp.StatusCode)
	}
	return nil
}

func classifyTransportError(ctx context.Context, endpoint string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.NewFetchError("request canceled", errors.Join(errors.ErrCanceled, err)).WithURL(endpoint)
	case errors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return errors.NewFetchError("request timed out", errors.Join(errors.ErrTimeout, err)).WithURL(endpoint)
	default:
		return errors.NewFetchError("send request", err).WithURL(endpoint)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
