package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultLimit         = 25
	DefaultMaxRetries    = 3
	DefaultBackoff       = 1500 * time.Millisecond
	DefaultMarketplaceID = "EBAY_US"

	searchConnectTimeout = 3 * time.Second
	searchTimeout        = 10 * time.Second
)

// Client searches sold listings through the eBay Browse API
type Client struct {
	tokens        TokenProvider
	httpClient    *resty.Client
	searchURL     string
	marketplaceID string
	maxRetries    int
	backoff       time.Duration
	limiter       *rate.Limiter
	logger        logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetries sets the attempt count and the linear backoff step.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if max > 0 {
			c.maxRetries = max
		}
		c.backoff = backoff
	}
}

// WithSearchURL overrides the item_summary/search endpoint.
func WithSearchURL(u string) ClientOption {
	return func(c *Client) {
		c.searchURL = u
	}
}

// WithSandbox targets the sandbox API host.
func WithSandbox(sandbox bool) ClientOption {
	return func(c *Client) {
		c.searchURL = apiHost(sandbox) + "/buy/browse/v1/item_summary/search"
	}
}

// WithMarketplace sets the X-EBAY-C-MARKETPLACE-ID header value.
func WithMarketplace(id string) ClientOption {
	return func(c *Client) {
		if id != "" {
			c.marketplaceID = id
		}
	}
}

// WithRateLimit caps outbound search requests per second.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = resty.NewWithClient(hc)
	}
}

// NewClient creates a sold-listings client backed by tokens
func NewClient(tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		tokens:        tokens,
		httpClient:    resty.NewWithClient(newHTTPClient(searchConnectTimeout, searchTimeout)),
		searchURL:     apiHost(false) + "/buy/browse/v1/item_summary/search",
		marketplaceID: DefaultMarketplaceID,
		maxRetries:    DefaultMaxRetries,
		backoff:       DefaultBackoff,
		limiter:       rate.NewLimiter(rate.Every(200*time.Millisecond), 5), // 5 requests per second
		logger:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.WithField("component", "ebay_search")

	return c
}

// Available reports whether the client can authenticate at all.
func (c *Client) Available() bool {
	if c.tokens == nil {
		return false
	}
	if ts, ok := c.tokens.(*TokenSource); ok {
		return ts.Configured()
	}
	return true
}

// SoldPrices returns the sale prices of sold listings matching query,
// lowest first. An empty result means no usable sales were found, or
// that every attempt failed; the two are deliberately not told apart.
//
// A ConfigError is returned immediately. An AuthError is returned only
// when every attempt failed while acquiring a token.
func (c *Client) SoldPrices(ctx context.Context, query string, limit int) ([]float64, error) {
	if c.tokens == nil {
		return nil, &ConfigError{Missing: []string{"EBAY_CLIENT_ID", "EBAY_CLIENT_SECRET"}}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var lastAuthErr error
	onlyAuthFailures := true

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		prices, err := c.search(ctx, query, limit)
		if err == nil {
			return prices, nil
		}

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			lastAuthErr = err
		} else {
			onlyAuthFailures = false
		}

		wait := c.backoff * time.Duration(attempt+1)
		c.logger.WithFields(logrus.Fields{
			"query":   query,
			"attempt": attempt + 1,
			"backoff": wait.String(),
		}).WithError(err).Warn("sold listings search failed")

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	if onlyAuthFailures && lastAuthErr != nil {
		return nil, lastAuthErr
	}

	c.logger.WithField("query", query).Warn("sold listings search retries exhausted")
	return []float64{}, nil
}

// search performs one authenticated attempt.
func (c *Client) search(ctx context.Context, query string, limit int) ([]float64, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-EBAY-C-MARKETPLACE-ID", c.marketplaceID).
		SetQueryParams(map[string]string{
			"q":      query,
			"limit":  strconv.Itoa(limit),
			"filter": "soldItems:true",
			"sort":   "price",
		}).
		Get(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		return nil, &statusError{StatusCode: resp.StatusCode(), Body: truncate(string(resp.Body()), 256)}
	}

	return parsePrices(resp.Body())
}

// searchResponse is the subset of item_summary/search we read
type searchResponse struct {
	ItemSummaries []struct {
		Price *struct {
			Value    any    `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"itemSummaries"`
}

func parsePrices(body []byte) ([]float64, error) {
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parse eBay response: %w", err)
	}

	prices := make([]float64, 0, len(sr.ItemSummaries))
	for _, item := range sr.ItemSummaries {
		if item.Price == nil {
			continue
		}
		if price, ok := priceValue(item.Price.Value); ok {
			prices = append(prices, price)
		}
	}

	return prices, nil
}

// priceValue accepts eBay's string amounts as well as plain numbers.
func priceValue(v any) (float64, bool) {
	switch val := v.(type) {
	case string:
		price, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return price, true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
