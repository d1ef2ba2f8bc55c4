// file: internal/upstream/client.go
// version: 1.0.0
// guid: f1657c93-f653-4fad-a69e-b75d2c2c3f62

// Package upstream holds the HTTP plumbing shared by every provider client.
package upstream

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

	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 30 * time.Second

// Client performs JSON requests against one provider base URL.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit paces outgoing requests with a token bucket.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTP3 switches the transport to HTTP/3 over QUIC.
func WithHTTP3(enabled bool) Option {
	return func(c *Client) {
		if enabled {
			c.httpClient.Transport = &http3.Transport{}
		}
	}
}

// NewClient creates a client for the named provider.
func NewClient(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "newsdeck/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON issues a GET and decodes the JSON reply into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST with an optional JSON body and decodes the reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.IncUpstream(c.name, Outcome(err))
		metrics.ObserveUpstreamDuration(c.name, time.Since(start))
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return Classify(werr)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("encode %s request: %w", c.name, merr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classify(fmt.Errorf("%s %s: %w", method, c.name, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Source: c.name, Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Classify(ctxErr)
		}
		return fmt.Errorf("%w: decode %s response: %w", ErrParse, c.name, err)
	}
	return nil
}
