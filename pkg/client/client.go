package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the ASF search service root.
	DefaultBaseURL = "https://api.daac.asf.alaska.edu"

	searchPath       = "services/search/param"
	defaultUserAgent = "aria-download/1.0"
	maxErrorBody     = 4 << 10
)

// Middleware manipulates an outgoing *http.Request before it is executed.
type Middleware func(context.Context, *http.Request) error

// RequestOption configures a single outgoing request.
type RequestOption func(*http.Request)

// ClientOption configures the Client.
type ClientOption func(*Client)

// Client talks to the ASF search service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	middleware []Middleware
	userAgent  string
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() {
		return nil, ErrInvalidBaseURL
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// endpoint returns the search/output endpoint URL.
func (c *Client) endpoint() *url.URL {
	return c.baseURL.JoinPath(searchPath)
}

// withContentType sets the request Content-Type.
func withContentType(ct string) RequestOption {
	return func(r *http.Request) { r.Header.Set("Content-Type", ct) }
}

// doRequest is the single place requests are built, passed through
// middleware, and executed.
func (c *Client) doRequest(ctx context.Context, method, rawURL string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for _, o := range opts {
		o(req)
	}

	for _, mw := range c.middleware {
		if err := mw(ctx, req); err != nil {
			return nil, fmt.Errorf("error applying middleware for %s: %w", rawURL, err)
		}
	}

	log.Debugf("%s %s", method, rawURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

// classify marks deadline and network timeouts with ErrTimeout.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// successful reports whether status is a 2xx code. Search and output
// requests share this rule.
func successful(status int) bool {
	return status >= 200 && status <= 299
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Status: resp.StatusCode,
		URL:    resp.Request.URL.String(),
		Body:   strings.TrimSpace(string(body)),
	}
}
