// Package hunter provides a client for the Hunter.io email finder and
// verifier API.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Hunter v2 API.
const defaultBaseURL = "https://api.hunter.io/v2"

// Client defines the Hunter API operations.
type Client interface {
	// FindEmail looks up the most likely email for a person at a domain.
	FindEmail(ctx context.Context, req FindRequest) (*FindResponse, error)
	// VerifyEmail checks deliverability of an address.
	VerifyEmail(ctx context.Context, email string) (*VerifyResponse, error)
}

// FindRequest are the parameters for GET /email-finder.
type FindRequest struct {
	Domain    string
	FirstName string
	LastName  string
}

// FindResponse is the parsed response from GET /email-finder.
type FindResponse struct {
	Data FindData `json:"data"`
}

// FindData holds the finder result fields.
type FindData struct {
	Email string `json:"email"`
	Score int    `json:"score"`
}

// VerifyResponse is the parsed response from GET /email-verifier.
type VerifyResponse struct {
	Data VerifyData `json:"data"`
}

// VerifyData holds the verifier result fields.
type VerifyData struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
}

// APIError is returned when Hunter responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: HTTP %d: %s", e.StatusCode, e.Body)
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Hunter client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
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

func (c *httpClient) FindEmail(ctx context.Context, req FindRequest) (*FindResponse, error) {
	q := url.Values{}
	q.Set("domain", req.Domain)
	q.Set("first_name", req.FirstName)
	q.Set("last_name", req.LastName)

	var resp FindResponse
	if err := c.get(ctx, "/email-finder", q, &resp); err != nil {
		return nil, eris.Wrap(err, "hunter: find email")
	}
	return &resp, nil
}

func (c *httpClient) VerifyEmail(ctx context.Context, email string) (*VerifyResponse, error) {
	q := url.Values{}
	q.Set("email", email)

	var resp VerifyResponse
	if err := c.get(ctx, "/email-verifier", q, &resp); err != nil {
		return nil, eris.Wrap(err, "hunter: verify email")
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

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
