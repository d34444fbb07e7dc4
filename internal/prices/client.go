package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/model"
)

// APIError represents an error response from the chart API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chart api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client provides access to the price-history API.
type Client struct {
	baseURL    string
	interval   string
	httpClient *http.Client
	logger     zerolog.Logger

	maxRetries   uint64
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new chart API client.
func NewClient(baseURL string, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		interval: "1d",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       logger.With().Str("component", "prices").Logger(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithInterval sets the bar interval (default "1d").
func WithInterval(interval string) ClientOption {
	return func(c *Client) {
		c.interval = interval
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max uint64, initialBackoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = initialBackoff
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// History fetches daily bars for ticker in [start, end). The index name
// is stamped onto every returned bar.
func (c *Client) History(ctx context.Context, ticker, index string, start, end time.Time) ([]model.PriceBar, error) {
	query := url.Values{}
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", c.interval)
	query.Set("events", "div,split")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), query, &resp); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}

	bars, err := convert(resp, ticker, index)
	if err != nil {
		return nil, fmt.Errorf("convert history for %s: %w", ticker, err)
	}
	return bars, nil
}

// get performs a GET with exponential backoff on retryable failures.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	fetch := func() ([]byte, error) {
		body, err := c.doRequest(ctx, path, query)
		if err == nil {
			return body, nil
		}
		if apiErr, ok := err.(*APIError); ok && !apiErr.IsRetryable() {
			return nil, backoff.Permanent(err)
		}
		c.logger.Debug().Err(err).Str("path", path).Msg("Retrying request")
		return nil, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(c.retryBackoff),
		), c.maxRetries),
		ctx,
	)

	body, err := backoff.RetryWithData(fetch, policy)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}
