// Package yahoo provides the Yahoo Finance implementation of the market
// data source.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	defaultTimeout = 30 * time.Second

	// Yahoo rejects requests without a browser-looking user agent.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Client is a Yahoo Finance API client implementing domain.MarketDataSource.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// Option configures the client
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// yahooQuoteResponse represents the response from the Yahoo quote API
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// Snapshot fetches the current quote fields for one ticker.
func (c *Client) Snapshot(ctx context.Context, ticker string) (domain.QuoteSnapshot, error) {
	params := url.Values{}
	params.Add("symbols", ticker)
	params.Add("fields", "symbol,previousClose,regularMarketPrice,currentPrice,regularMarketTime")

	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return domain.QuoteSnapshot{}, err
	}

	var result yahooQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("yahoo quote API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return domain.QuoteSnapshot{}, fmt.Errorf("no quote data returned for symbol %s", ticker)
	}

	info := result.QuoteResponse.Result[0]

	snap := domain.QuoteSnapshot{
		PreviousClose:      getFloat64OrZero(info, "previousClose"),
		RegularMarketPrice: getFloat64OrZero(info, "regularMarketPrice"),
		CurrentPrice:       getFloat64OrZero(info, "currentPrice"),
	}
	if epoch := getInt64(info, "regularMarketTime"); epoch != nil {
		ts := time.Unix(*epoch, 0)
		snap.LastTradeTime = &ts
	}

	return snap, nil
}

// DailyHistory fetches up to `days` recent daily bars via the chart API.
func (c *Client) DailyHistory(ctx context.Context, ticker string, days int) ([]domain.Bar, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", fmt.Sprintf("%dd", days))

	return c.fetchChartBars(ctx, ticker, params)
}

// IntradayHistory fetches the current session's 5-minute bars.
func (c *Client) IntradayHistory(ctx context.Context, ticker string) ([]domain.Bar, error) {
	params := url.Values{}
	params.Add("interval", "5m")
	params.Add("range", "1d")

	return c.fetchChartBars(ctx, ticker, params)
}

// DailyCloses fetches daily closing prices per ticker over [start, end].
// Fetches are sequential per ticker; a failure for any ticker fails the
// whole call, the caller decides whether that degrades to a default.
func (c *Client) DailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string][]domain.ClosePrice, error) {
	closes := make(map[string][]domain.ClosePrice, len(tickers))

	for _, ticker := range tickers {
		if _, ok := closes[ticker]; ok {
			continue
		}

		params := url.Values{}
		params.Add("interval", "1d")
		params.Add("period1", fmt.Sprintf("%d", start.Unix()))
		params.Add("period2", fmt.Sprintf("%d", end.Unix()))

		bars, err := c.fetchChartBars(ctx, ticker, params)
		if err != nil {
			return nil, fmt.Errorf("history for %s: %w", ticker, err)
		}

		series := make([]domain.ClosePrice, 0, len(bars))
		for _, bar := range bars {
			series = append(series, domain.ClosePrice{Date: bar.Date, Close: bar.Close})
		}
		closes[ticker] = series
	}

	return closes, nil
}

// fetchChartBars calls the v8 chart API and flattens the response into bars.
func (c *Client) fetchChartBars(ctx context.Context, ticker string, params url.Values) ([]domain.Bar, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open  []float64 `json:"open"`
						Close []float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error interface{} `json:"error"`
		} `json:"chart"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("ticker", ticker).Msg("No chart data returned")
		return []domain.Bar{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("ticker", ticker).Msg("No quote data in chart response")
		return []domain.Bar{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(chartData.Timestamp))
	for i, epoch := range chartData.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// Yahoo represents missing sessions as zeroed bars.
		if quote.Close[i] == 0 {
			continue
		}

		open := 0.0
		if i < len(quote.Open) {
			open = quote.Open[i]
		}

		bars = append(bars, domain.Bar{
			Date:  time.Unix(epoch, 0),
			Open:  open,
			Close: quote.Close[i],
		})
	}

	return bars, nil
}

// get performs a GET request with browser-mimicking headers.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Helper functions to safely extract values from map

func getFloat64OrZero(m map[string]interface{}, key string) float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	}
	return 0
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			i := int64(v)
			return &i
		case int64:
			return &v
		case int:
			i := int64(v)
			return &i
		}
	}
	return nil
}
