package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// PriceFetcher returns the current BTC price in the configured currency
type PriceFetcher interface {
	FetchPrice(ctx context.Context) (float64, error)
}

// PriceFetcherFunc adapts a function to PriceFetcher
type PriceFetcherFunc func(ctx context.Context) (float64, error)

func (f PriceFetcherFunc) FetchPrice(ctx context.Context) (float64, error) {
	return f(ctx)
}

// maxPriceBody bounds the quote response read into memory
const maxPriceBody = 1 << 20

// HTTPPriceFetcher queries a simple-price style endpoint that answers
// {"<coin>": {"<currency>": <price>}}
type HTTPPriceFetcher struct {
	Client     *http.Client
	Endpoint   string
	Coin       string
	Currency   string
	MaxRetries uint
	// InitialBackoff is the first retry delay; later delays grow exponentially
	InitialBackoff time.Duration
	logger         *zap.Logger
}

// NewHTTPPriceFetcher creates a fetcher from the price section of the config
func NewHTTPPriceFetcher(cfg PriceConfig, logger *zap.Logger) *HTTPPriceFetcher {
	return &HTTPPriceFetcher{
		Client:         &http.Client{Timeout: cfg.Timeout},
		Endpoint:       cfg.Endpoint,
		Coin:           strings.ToLower(cfg.Coin),
		Currency:       strings.ToLower(cfg.Currency),
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: 500 * time.Millisecond,
		logger:         logger.With(zap.String("component", "price")),
	}
}

// URL returns the request URL with the coin and currency query parameters
func (f *HTTPPriceFetcher) URL() (string, error) {
	u, err := url.Parse(f.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid price endpoint: %w", err)
	}
	q := u.Query()
	q.Set("ids", f.Coin)
	q.Set("vs_currencies", f.Currency)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPrice requests the current price, retrying transport errors and
// 5xx/429 responses with exponential backoff
func (f *HTTPPriceFetcher) FetchPrice(ctx context.Context) (float64, error) {
	reqURL, err := f.URL()
	if err != nil {
		return 0, err
	}

	policy := backoff.NewExponentialBackOff()
	if f.InitialBackoff > 0 {
		policy.InitialInterval = f.InitialBackoff
		policy.MaxInterval = f.InitialBackoff * 10
	}
	tries := f.MaxRetries
	if tries == 0 {
		tries = 1
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("Price request failed, retrying", zap.Error(err), zap.Duration("backoff", wait))
	}

	price, err := backoff.Retry(ctx, func() (float64, error) {
		return f.fetchOnce(ctx, reqURL)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(notify))
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		f.logger.Error("Price fetch failed", zap.String("url", reqURL), zap.Error(err))
		return 0, err
	}

	f.logger.Info("Fetched price",
		zap.String("coin", f.Coin),
		zap.String("currency", f.Currency),
		zap.Float64("price", price))
	return price, nil
}

func (f *HTTPPriceFetcher) fetchOnce(ctx context.Context, reqURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, backoff.Permanent(&NetworkError{URL: reqURL, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "goBTCProjection/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, backoff.Permanent(&NetworkError{URL: reqURL, Err: ctx.Err()})
		}
		return 0, &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPriceBody))
	if err != nil {
		return 0, &NetworkError{URL: reqURL, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		netErr := &NetworkError{URL: reqURL, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return 0, netErr
		}
		return 0, backoff.Permanent(netErr)
	}

	price, err := parsePrice(body, f.Coin, f.Currency)
	if err != nil {
		return 0, backoff.Permanent(&DataFormatError{Source: reqURL, Err: err})
	}
	return price, nil
}

// parsePrice extracts payload[coin][currency] as a positive number
func parsePrice(body []byte, coin, currency string) (float64, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	rawQuotes, ok := payload[coin]
	if !ok {
		return 0, fmt.Errorf("missing %q", coin)
	}
	var quotes map[string]json.RawMessage
	if err := json.Unmarshal(rawQuotes, &quotes); err != nil {
		return 0, fmt.Errorf("%q is not an object: %w", coin, err)
	}
	rawPrice, ok := quotes[currency]
	if !ok {
		return 0, fmt.Errorf("missing %q.%q", coin, currency)
	}
	var price float64
	if err := json.Unmarshal(rawPrice, &price); err != nil {
		return 0, fmt.Errorf("%q.%q is not a number: %w", coin, currency, err)
	}
	if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, fmt.Errorf("%q.%q must be positive, got %v", coin, currency, price)
	}
	return price, nil
}
