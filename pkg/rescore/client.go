// Package rescore provides a client for the optional semantic re-ranking
// service.
package rescore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/shortlist-group/jobscout/internal/model"
)

// Request is the payload sent to the rescoring endpoint.
type Request struct {
	Jobs        []model.ScoredJob    `json:"jobs"`
	Profile     model.ResumeProfile  `json:"profile"`
	Preferences model.JobPreferences `json:"preferences"`
}

// JobScore is the per-job response from the service.
type JobScore struct {
	DedupeKey        string   `json:"dedupe_key"`
	SemanticFitScore int      `json:"semantic_fit_score"`
	Reasons          []string `json:"reasons"`
	CombinedScore    int      `json:"combined_score"`
}

// Response is the full rescoring response.
type Response struct {
	Scores []JobScore `json:"scores"`
}

// Client calls the semantic augmentation service.
type Client interface {
	Rescore(ctx context.Context, req Request) (*Response, error)
}

// Option configures the rescore client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a rescore client for the given endpoint.
func NewClient(endpoint string, opts ...Option) Client {
	c := &httpClient{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Rescore(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "rescore: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "rescore: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "rescore: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "rescore: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("rescore: status %d: %s", resp.StatusCode, string(body))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "rescore: unmarshal response")
	}
	return &out, nil
}
