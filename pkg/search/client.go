// Package search provides a client for an HTML web-search interface.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client performs web searches and returns raw result-page HTML.
type Client interface {
	Search(ctx context.Context, query string) (string, error)
}

// Option configures the search client.
type Option func(*httpClient)

// WithBaseURL sets a custom search endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an HTML search client. The default endpoint is the
// DuckDuckGo HTML interface, which needs no API key.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://html.duckduckgo.com/html/",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// Search issues one query and returns the result page HTML, retrying with
// backoff on transient failures (429, 500, 502, 503).
func (c *httpClient) Search(ctx context.Context, query string) (string, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(query))

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return "", eris.Wrap(err, "search: create request")
		}
		req.Header.Set("User-Agent", "jobscout/1.0")
		req.Header.Set("Accept", "text/html")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = eris.Wrap(err, "search: request failed")
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return "", eris.Wrap(readErr, "search: read response body")
			}
			if resp.StatusCode == http.StatusOK {
				return string(body), nil
			}
			lastErr = eris.Errorf("search: status %d", resp.StatusCode)
			if !retryableStatusCode(resp.StatusCode) {
				return "", lastErr
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return "", lastErr
}
