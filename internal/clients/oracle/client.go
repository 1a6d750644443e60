// Package oracle provides an HTTP client for the last-traded-price oracle.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
)

const (
	DefaultTimeout   = 3 * time.Second
	DefaultRateLimit = 10 // lookups per second
)

// Client implements the PriceOracle interface against a quote HTTP endpoint.
// Lookups are bounded (client timeout + rate limiter) so a slow oracle can
// never stall a valuation — failures report as "no price", not errors.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(lookupsPerSecond int) ClientOption {
	return func(c *Client) {
		if lookupsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(lookupsPerSecond), lookupsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a new price oracle client for the given base URL.
// apiKey may be empty for unauthenticated oracles.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// quoteResponse is the oracle's quote payload.
type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Lookup retrieves the last traded price for symbol. ok is false on any
// failure — unknown symbol, non-OK status, transport error, malformed body,
// or a non-positive price.
func (c *Client) Lookup(ctx context.Context, symbol string) (float64, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, false
	}

	reqURL := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("Oracle lookup failed")
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("symbol", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Oracle non-OK response")
		return 0, false
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Oracle response decode failed")
		return 0, false
	}

	if quote.Price <= 0 {
		return 0, false
	}

	c.logger.Debug().Str("symbol", symbol).Float64("price", quote.Price).Dur("elapsed", elapsed).Msg("Oracle lookup")
	return quote.Price, true
}

// Ensure Client implements PriceOracle
var _ interfaces.PriceOracle = (*Client)(nil)
