// Package gateway provides the single HTTP call pattern the front-end uses to
// talk to the scraping server: one request, optional form body, raw response.
// The typed endpoint client in scrapeapi embeds it.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/henrybloomingdale/litscrape/internal/observability"
)

const (
	// DefaultBaseURL is where the scraping server listens in development.
	DefaultBaseURL = "http://127.0.0.1:5000"
	// DefaultUserAgent identifies this front-end to the server.
	DefaultUserAgent = "litscrape"

	// DefaultMaxResponseBytes is the maximum response body size (50 MB).
	DefaultMaxResponseBytes int64 = 50 * 1024 * 1024
)

// ErrTransport marks every failed request: network errors, non-2xx
// responses, oversized bodies. Callers only distinguish success from failure.
var ErrTransport = errors.New("request failed")

// Client sends requests to the scraping server. It never retries, queues, or
// de-duplicates: every Send is one independent request.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	MaxBytes   int64

	metrics *observability.Metrics
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the server base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTimeout sets a transport timeout. Zero means none, which is the default:
// scrapes can run for minutes. The client is copied so a shared one passed to
// WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.HTTPClient
		hc.Timeout = d
		c.HTTPClient = &hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative removes
// the cap.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.Limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMaxResponseBytes sets the maximum allowed response body size.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.MaxBytes = n }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = observability.Component(l, "gateway") }
}

// NewClient creates a gateway client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		UserAgent:  DefaultUserAgent,
		MaxBytes:   DefaultMaxResponseBytes,
		Limiter:    rate.NewLimiter(rate.Inf, 1),
		HTTPClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one request against endpoint and returns the response body.
// method must be GET or POST. A POST body is sent form-encoded; a GET body is
// appended to the query string.
func (c *Client) Send(ctx context.Context, endpoint, method string, body url.Values) ([]byte, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	fullURL, err := c.ResolveURL(endpoint)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if len(body) > 0 {
		if method == http.MethodPost {
			reqBody = strings.NewReader(body.Encode())
		} else {
			sep := "?"
			if strings.Contains(fullURL, "?") {
				sep = "&"
			}
			fullURL += sep + body.Encode()
		}
	}

	// Wait for rate limiter token (respects context cancellation).
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	label := metricEndpoint(endpoint)
	start := time.Now()
	respBody, err := c.do(req)
	c.observe(label, method, start, err)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", label).Str("method", method).Msg("request failed")
		return nil, err
	}
	c.logger.Debug().
		Str("endpoint", label).
		Str("method", method).
		Int("bytes", len(respBody)).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")
	return respBody, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("%w: server returned HTTP %d for %s", ErrTransport, resp.StatusCode, req.URL.Path)
	}

	// Guard against unbounded reads: read up to MaxBytes+1 to detect oversized responses.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}
	if int64(len(body)) > c.MaxBytes {
		return nil, fmt.Errorf("%w: response exceeds maximum size of %d bytes", ErrTransport, c.MaxBytes)
	}
	return body, nil
}

func (c *Client) observe(endpoint, method string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(endpoint, method).Inc()
	c.metrics.RequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestsFailed.WithLabelValues(endpoint, method).Inc()
	}
}

// ResolveURL joins a server-relative path onto the base URL. Absolute URLs are
// returned unchanged.
func (c *Client) ResolveURL(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// metricEndpoint keeps label cardinality low: query strings are dropped.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return "/" + strings.TrimLeft(endpoint, "/")
}
