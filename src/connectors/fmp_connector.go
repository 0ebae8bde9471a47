package connectors

// REST client for the FMP (Financial Modeling Prep) stable API.
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 2 * time.Second
	defaultRetryMaxBackoff = 10 * time.Second

	// Lookback window for daily closes. 20 rows is enough to locate a
	// trading day and its predecessor across ordinary holiday gaps.
	defaultLookback = 20

	dateLayout = "2006-01-02"
)

// HistoricalPrice is one daily bar as returned by FMP, newest first.
type HistoricalPrice struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PricePair carries the close on a requested date together with the close
// of the immediately preceding trading day.
type PricePair struct {
	AsOfClose decimal.Decimal
	PrevClose decimal.Decimal
}

type constituent struct {
	Symbol string `json:"symbol"`
}

type earningsEvent struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
}

// FMPClient talks to the FMP stable API. Transient failures (transport
// errors, timeouts, 5xx) are retried with exponential backoff; 429 surfaces
// as *RateLimitError without retry; other 4xx surface as *APIError.
type FMPClient struct {
	apiKey  string
	baseURL string
	http    *resty.Client
	limiter *rate.Limiter
}

func NewFMPClient() *FMPClient {
	config := GetConfig()
	return NewFMPClientWithConfig(config)
}

func NewFMPClientWithConfig(config Config) *FMPClient {
	baseURL := strings.TrimRight(config.FMPBaseURL, "/")

	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &FMPClient{
		apiKey:  config.FMPAPIKey,
		baseURL: baseURL,
		http:    httpClient,
		limiter: limiter,
	}
}

// isRetryableResp marks transport errors, timeouts and server errors as
// retryable. 429 is excluded: rate limits must reach the caller as a
// distinct failure kind, not disappear into generic backoff.
func isRetryableResp(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusRequestTimeout
}

func (c *FMPClient) get(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("fmp rate limiter wait: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"connector": "fmp",
		"endpoint":  endpoint,
	}).Debug("FMP request")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", c.apiKey).
		SetResult(out).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("fmp request to %s failed: %w", endpoint, err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return &RateLimitError{Endpoint: endpoint}
	}
	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Endpoint:   endpoint,
			Body:       string(resp.Body()),
		}
	}

	return nil
}

// GetSP500Constituents returns the current S&P500 symbol list.
func (c *FMPClient) GetSP500Constituents(ctx context.Context) ([]string, error) {
	var data []constituent
	if err := c.get(ctx, "/sp500-constituent", nil, &data); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(data))
	for _, item := range data {
		if item.Symbol != "" {
			symbols = append(symbols, item.Symbol)
		}
	}
	return symbols, nil
}

// GetEarningsCalendar returns symbols with an earnings announcement exactly
// on asOf.
func (c *FMPClient) GetEarningsCalendar(ctx context.Context, asOf time.Time) ([]string, error) {
	dateStr := asOf.Format(dateLayout)

	var data []earningsEvent
	err := c.get(ctx, "/earnings-calendar", map[string]string{
		"from": dateStr,
		"to":   dateStr,
	}, &data)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(data))
	for _, item := range data {
		if item.Symbol != "" {
			symbols = append(symbols, item.Symbol)
		}
	}
	return symbols, nil
}

// GetHistoricalPrices returns up to timeseries daily bars, newest first.
func (c *FMPClient) GetHistoricalPrices(ctx context.Context, symbol string, timeseries int) ([]HistoricalPrice, error) {
	if timeseries <= 0 {
		timeseries = defaultLookback
	}

	var data []HistoricalPrice
	err := c.get(ctx, "/historical-price-eod/full", map[string]string{
		"symbol": symbol,
	}, &data)
	if err != nil {
		return nil, err
	}

	if len(data) > timeseries {
		data = data[:timeseries]
	}
	return data, nil
}

// GetPriceDataForDate returns the close on asOf and the previous trading
// day's close. It returns (nil, nil) when asOf is not a trading day within
// the lookback window, or when the window holds no day before it. A holiday
// gap longer than the window falls out as nil the same way.
func (c *FMPClient) GetPriceDataForDate(ctx context.Context, symbol string, asOf time.Time) (*PricePair, error) {
	historical, err := c.GetHistoricalPrices(ctx, symbol, defaultLookback)
	if err != nil {
		return nil, err
	}
	if len(historical) == 0 {
		return nil, nil
	}

	asOfStr := asOf.Format(dateLayout)

	asOfIdx := -1
	for i, item := range historical {
		if item.Date == asOfStr {
			asOfIdx = i
			break
		}
	}
	if asOfIdx == -1 {
		logger.WithFields(map[string]interface{}{
			"connector": "fmp",
			"symbol":    symbol,
			"date":      asOfStr,
		}).Debug("Date not found in historical data")
		return nil, nil
	}

	// Data is sorted newest first, so the previous trading day is the
	// next row after asOf.
	if asOfIdx+1 >= len(historical) {
		logger.WithFields(map[string]interface{}{
			"connector": "fmp",
			"symbol":    symbol,
			"date":      asOfStr,
		}).Debug("No previous trading day in lookback window")
		return nil, nil
	}

	return &PricePair{
		AsOfClose: historical[asOfIdx].Close,
		PrevClose: historical[asOfIdx+1].Close,
	}, nil
}

// GetCloseOn returns the close price on asOf, or nil when the date is not a
// trading day within the lookback window.
func (c *FMPClient) GetCloseOn(ctx context.Context, symbol string, asOf time.Time) (*decimal.Decimal, error) {
	historical, err := c.GetHistoricalPrices(ctx, symbol, defaultLookback)
	if err != nil {
		return nil, err
	}

	asOfStr := asOf.Format(dateLayout)
	for _, item := range historical {
		if item.Date == asOfStr {
			closePrice := item.Close
			return &closePrice, nil
		}
	}
	return nil, nil
}
