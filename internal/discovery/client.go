// Package discovery fetches newly listed liquidity pools from Raydium
// and feeds them into the pool store.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"solana-pool-radar/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryBackoff = 2 * time.Second
)

// DefaultEndpoints are the Raydium pair-list endpoints, tried in priority
// order. The first endpoint returning a parseable 2xx body wins the cycle.
var DefaultEndpoints = []string{
	"https://api.raydium.io/v2/main/pairs",
	"https://api-v3.raydium.io/pools/info/list",
}

// Client fetches the Raydium pool list with endpoint failover.
// Each endpoint is guarded by its own circuit breaker so a flapping
// endpoint is skipped quickly after consecutive failures.
type Client struct {
	endpoints    []string
	client       *http.Client
	retryBackoff time.Duration
	breakers     map[string]*gobreaker.CircuitBreaker
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithRetryBackoff sets the fixed delay between endpoint attempts.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryBackoff = d
	}
}

// NewClient creates a new discovery client. If endpoints is empty,
// DefaultEndpoints is used.
func NewClient(endpoints []string, opts ...ClientOption) *Client {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}

	c := &Client{
		endpoints:    endpoints,
		client:       &http.Client{Timeout: DefaultTimeout},
		retryBackoff: DefaultRetryBackoff,
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, endpoint := range c.endpoints {
		c.breakers[endpoint] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    endpoint,
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})
	}

	return c
}

// FetchPools downloads the current pool list. Endpoints are tried in
// priority order; open breakers are skipped. When every endpoint fails
// the error describes the last failure and callers treat the cycle as
// empty.
func (c *Client) FetchPools(ctx context.Context) ([]domain.RawPoolEntry, error) {
	var lastErr error

	for i, endpoint := range c.endpoints {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryBackoff):
			}
		}

		result, err := c.breakers[endpoint].Execute(func() (interface{}, error) {
			return c.fetchFrom(ctx, endpoint)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("endpoint %s: %w", endpoint, err)
			continue
		}

		return result.([]domain.RawPoolEntry), nil
	}

	return nil, fmt.Errorf("all discovery endpoints failed: %w", lastErr)
}

// EndpointState reports whether the breaker for an endpoint is open.
func (c *Client) EndpointState(endpoint string) gobreaker.State {
	if cb, ok := c.breakers[endpoint]; ok {
		return cb.State()
	}
	return gobreaker.StateClosed
}

func (c *Client) fetchFrom(ctx context.Context, endpoint string) ([]domain.RawPoolEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var entries []domain.RawPoolEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal pool list: %w", err)
	}

	return entries, nil
}
