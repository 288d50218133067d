package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// maxBodyBytes caps how much of a posting page is read into memory.
const maxBodyBytes = 2 * 1024 * 1024 // 2 MB

// FetchOptions configures a single fetch.
type FetchOptions struct {
	Timeout time.Duration
	Headers map[string]string
	Method  string
}

// FetchResult is the outcome of a successful HTTP exchange. A non-2xx status
// is still a FetchResult, not an error — callers decide what to do with it.
type FetchResult struct {
	StatusCode int
	Body       []byte
}

// HTTPFetcher issues timeout-bounded requests with a shared transport.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher. The client timeout acts as a
// default; per-call FetchOptions.Timeout overrides it via context deadline.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = "jobscout/1.0"
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
	}
}

// FetchWithTimeout issues one HTTP request, aborting after opts.Timeout
// (default 15s). Network failures and aborts return a wrapped error — the
// call never hangs past its deadline.
func (f *HTTPFetcher) FetchWithTimeout(ctx context.Context, rawURL string, opts FetchOptions) (*FetchResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: fetch %s", rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body %s", rawURL)
	}

	return &FetchResult{StatusCode: resp.StatusCode, Body: body}, nil
}

// Probe checks URL reachability for QC with a short deadline. It tries HEAD
// first and falls back to GET for hosts that reject HEAD. Any 2xx or 3xx
// status counts as reachable.
func (f *HTTPFetcher) Probe(ctx context.Context, rawURL string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}

	res, err := f.FetchWithTimeout(ctx, rawURL, FetchOptions{Timeout: timeout, Method: http.MethodHead})
	if err == nil && res.StatusCode < 400 {
		return true
	}
	if err == nil && res.StatusCode != http.StatusMethodNotAllowed && res.StatusCode != http.StatusNotImplemented {
		return false
	}

	res, err = f.FetchWithTimeout(ctx, rawURL, FetchOptions{Timeout: timeout})
	return err == nil && res.StatusCode < 400
}
