// Package apify provides a client for the Apify actor-run API and a poller
// that drives runs to completion.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Apify v2 API.
const defaultBaseURL = "https://api.apify.com/v2"

// Run states reported by the actor-run API.
const (
	RunReady     = "READY"
	RunRunning   = "RUNNING"
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
	RunAborted   = "ABORTED"
	RunTimedOut  = "TIMED-OUT"
)

// Client defines the Apify API operations.
type Client interface {
	// StartRun launches an actor with the given input.
	StartRun(ctx context.Context, actorID string, input any, opts RunOptions) (*Run, error)
	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, runID string) (*Run, error)
	// DatasetItems fetches the result records of a run's default dataset.
	DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error)
}

// RunOptions bounds the resources of a started run. The zero value applies
// the package defaults (2 GB memory, 300 s run timeout), which exist so an
// unbounded actor cannot exhaust the account or trip host-side rate limits.
type RunOptions struct {
	MemoryMBytes int
	TimeoutSecs  int
}

func (o RunOptions) withDefaults() RunOptions {
	if o.MemoryMBytes <= 0 {
		o.MemoryMBytes = 2048
	}
	if o.TimeoutSecs <= 0 {
		o.TimeoutSecs = 300
	}
	return o
}

// Run is an actor run as reported by the API.
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// runEnvelope is the {"data": ...} wrapper Apify puts around run objects.
type runEnvelope struct {
	Data Run `json:"data"`
}

// APIError is returned when Apify responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apify: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) StartRun(ctx context.Context, actorID string, input any, opts RunOptions) (*Run, error) {
	opts = opts.withDefaults()
	path := fmt.Sprintf("/acts/%s/runs?memory=%d&timeout=%d", actorID, opts.MemoryMBytes, opts.TimeoutSecs)

	buf, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal input")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	var env runEnvelope
	if err := c.do(req, &env); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("apify: start run %s", actorID))
	}
	return &env.Data, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID string) (*Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/actor-runs/"+runID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}

	var env runEnvelope
	if err := c.do(req, &env); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("apify: get run %s", runID))
	}
	return &env.Data, nil
}

func (c *httpClient) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/datasets/"+datasetID+"/items", nil)
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}

	var items []map[string]any
	if err := c.do(req, &items); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("apify: fetch dataset %s", datasetID))
	}
	return items, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
