// Package remote fetches edge documents and DOT graphs over HTTP.
//
// Transient failures (connection errors, 5xx responses) are retried with
// exponential backoff; 404 maps to NOT_FOUND and other statuses fail
// immediately. Bodies larger than the client's limit are rejected rather
// than truncated.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/matzehuels/edgebundle/pkg/buildinfo"
	"github.com/matzehuels/edgebundle/pkg/cache"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

// Defaults for [NewClient].
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 32 << 20
)

// Client fetches documents with retries.
type Client struct {
	http     *http.Client
	headers  map[string]string
	maxBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option { return func(c *Client) { c.headers[key] = value } }

// WithMaxBytes limits the accepted response size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// NewClient creates a Client with a 10s timeout and a 32 MiB body limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		headers:  map[string]string{"User-Agent": "edgebundle/" + buildinfo.Version},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Name returns the last path element of rawURL, which carries the file
// extension used to detect the input format. It falls back to the host.
func Name(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return base
	}
	return u.Host
}

// Fetch downloads rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an http(s) URL: %q", rawURL)
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: response exceeds %d bytes", rawURL, c.maxBytes)
	}
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", rawURL)
	case code == http.StatusTooManyRequests, code >= 500:
		return cache.Retryable(fmt.Errorf("%w: %s: status %d", cache.ErrNetwork, rawURL, code))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: unexpected status %d", rawURL, code)
	}
}
