package megasena

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Doer abstracts the HTTP transport so tests can swap it out
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPError captures an unexpected upstream status code
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// APIClient talks to the public Mega-Sena API. GET {base} returns the
// latest draw summary, GET {base}/{n} a single draw detail.
type APIClient struct {
	baseURL string
	client  Doer
	timeout time.Duration
	logger  Logger
}

// NewAPIClient creates a client for the upstream lottery API
func NewAPIClient(baseURL string, client Doer, timeout time.Duration, logger Logger) *APIClient {
	if client == nil {
		client = &http.Client{}
	}
	return &APIClient{
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// LatestDraw fetches the latest known draw summary
func (c *APIClient) LatestDraw(ctx context.Context) (RawDraw, error) {
	return c.getJSON(ctx, c.baseURL, c.timeout)
}

// DrawByNumber fetches the detail for a single draw number
func (c *APIClient) DrawByNumber(ctx context.Context, number int) (RawDraw, error) {
	return c.getJSON(ctx, fmt.Sprintf("%s/%d", c.baseURL, number), c.timeout)
}

// DrawByNumberQuick is DrawByNumber with a shorter timeout, used by
// the date-lookup fallback scan where many sequential probes run.
func (c *APIClient) DrawByNumberQuick(ctx context.Context, number int, timeout time.Duration) (RawDraw, error) {
	return c.getJSON(ctx, fmt.Sprintf("%s/%d", c.baseURL, number), timeout)
}

func (c *APIClient) getJSON(ctx context.Context, url string, timeout time.Duration) (RawDraw, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	var draw RawDraw
	if err := json.NewDecoder(resp.Body).Decode(&draw); err != nil {
		return nil, fmt.Errorf("failed to decode draw JSON: %w", err)
	}
	return draw, nil
}
