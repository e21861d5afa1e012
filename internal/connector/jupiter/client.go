package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// apiClient wraps the aggregator's HTTP quote/swap API with bounded
// retries. Server-side and transport errors are retried; a 4xx means the
// request itself is wrong and is returned immediately.
type apiClient struct {
	quoteURL   string
	swapURL    string
	httpClient *http.Client
	maxElapsed time.Duration
}

func newAPIClient(quoteURL, swapURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		quoteURL:   quoteURL,
		swapURL:    swapURL,
		httpClient: &http.Client{Timeout: timeout},
		maxElapsed: timeout,
	}
}

func (c *apiClient) fetchQuote(ctx context.Context, params url.Values) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.do(req)
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
}

func (c *apiClient) postSwap(ctx context.Context, body swapRequest) (*swapResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	op := func() (*swapResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.swapURL, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		raw, err := c.do(req)
		if err != nil {
			return nil, err
		}
		var out swapResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("malformed swap response: %w", err))
		}
		return &out, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
}

func (c *apiClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("aggregator returned %d: %s", resp.StatusCode, truncate(raw))
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("aggregator rejected request with %d: %s", resp.StatusCode, truncate(raw)))
	}
	return raw, nil
}

func truncate(raw []byte) string {
	const limit = 256
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
