// Package ingestion polls market data for discovered tokens and turns
// it into validated price samples.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"solana-pool-radar/internal/domain"
)

// Default DexScreener client configuration.
const (
	DefaultBaseURL    = "https://api.dexscreener.com/latest/dex/tokens"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 500 * time.Millisecond
)

// ErrNoPairs marks a token with no trading pairs on DexScreener. The
// token is skipped for the cycle, not treated as a failure.
var ErrNoPairs = errors.New("no trading pairs found")

// Pair is a single DexScreener trading pair for a token.
type Pair struct {
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		M5  float64 `json:"m5"`
		H1  float64 `json:"h1"`
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Txns struct {
		M5 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"m5"`
	} `json:"txns"`
	FDV float64 `json:"fdv"`
}

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}

// DexScreenerClient fetches per-token pair data over HTTP.
type DexScreenerClient struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// DexScreenerOption configures DexScreenerClient.
type DexScreenerOption func(*DexScreenerClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) DexScreenerOption {
	return func(c *DexScreenerClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) DexScreenerOption {
	return func(c *DexScreenerClient) {
		c.client = client
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) DexScreenerOption {
	return func(c *DexScreenerClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) DexScreenerOption {
	return func(c *DexScreenerClient) {
		c.maxRetries = n
	}
}

// NewDexScreenerClient creates a new DexScreener client.
func NewDexScreenerClient(opts ...DexScreenerOption) *DexScreenerClient {
	c := &DexScreenerClient{
		baseURL:    DefaultBaseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenPairs returns all trading pairs for a token address. Returns
// ErrNoPairs when the token is unknown to DexScreener.
func (c *DexScreenerClient) TokenPairs(ctx context.Context, tokenAddress string) ([]Pair, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, tokenAddress)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		pairs, err := c.fetch(ctx, url)
		if err != nil {
			if errors.Is(err, ErrNoPairs) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		return pairs, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *DexScreenerClient) fetch(ctx context.Context, url string) ([]Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal pairs: %w", err)
	}
	if len(parsed.Pairs) == 0 {
		return nil, ErrNoPairs
	}
	return parsed.Pairs, nil
}

// BestPair selects the pair with the highest USD liquidity.
func BestPair(pairs []Pair) *Pair {
	if len(pairs) == 0 {
		return nil
	}
	best := &pairs[0]
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Liquidity.USD > best.Liquidity.USD {
			best = &pairs[i]
		}
	}
	return best
}

// ToSample converts a pair into a price sample for the token at the
// given time. Market cap falls back to a liquidity-derived estimate
// when FDV is absent.
func (p *Pair) ToSample(tokenAddress string, now time.Time) (*domain.PriceSample, error) {
	price, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return nil, fmt.Errorf("parse priceUsd %q: %w", p.PriceUSD, err)
	}

	return &domain.PriceSample{
		TokenAddress:      tokenAddress,
		TimestampMs:       now.UnixMilli(),
		PriceUSD:          price,
		LiquidityUSD:      p.Liquidity.USD,
		Volume5m:          p.Volume.M5,
		Volume1h:          p.Volume.H1,
		Volume24h:         p.Volume.H24,
		Buys5m:            p.Txns.M5.Buys,
		Sells5m:           p.Txns.M5.Sells,
		PriceChange5m:     p.PriceChange.M5,
		PriceChange1h:     p.PriceChange.H1,
		PriceChange24h:    p.PriceChange.H24,
		MarketCapEstimate: domain.EstimateMarketCap(p.FDV, p.Liquidity.USD),
	}, nil
}
