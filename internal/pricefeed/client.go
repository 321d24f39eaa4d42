// Package pricefeed fetches current and historical closing prices for a
// symbol from a Yahoo-chart-compatible HTTP endpoint. It is the read-only
// price collaborator of the report calculator; nothing here mutates
// application state.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client is the price-feed surface consumed by the price service.
// Implementations fetch daily closes for a ticker symbol.
type Client interface {
	// RecentCloses fetches the last few trading days for a symbol (5-day window).
	RecentCloses(ctx context.Context, symbol string) (Chart, error)
	// ClosesByDateRange fetches daily closes for a symbol within [startDate, endDate].
	ClosesByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Chart, error)
}

// HTTPClient fetches price data over HTTP. The zero value is not usable;
// construct with New.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	// apiKey can be replaced through the settings endpoint while cron
	// refreshes are in flight.
	mu     sync.RWMutex
	apiKey string
}

// New creates a price-feed client against the given base URL. apiKey may be
// empty; when set it is sent as the X-API-Key header on every request.
func New(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetAPIKey replaces the key sent with feed requests. Used when the stored
// key is updated through the settings endpoint.
func (c *HTTPClient) SetAPIKey(apiKey string) {
	c.mu.Lock()
	c.apiKey = apiKey
	c.mu.Unlock()
}

func (c *HTTPClient) currentAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// RecentCloses fetches the last 5 trading days of daily closes for a symbol.
// Typically used to pick up the latest available closing price.
func (c *HTTPClient) RecentCloses(ctx context.Context, symbol string) (Chart, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, symbol)
	return c.fetchChart(ctx, url, symbol)
}

// ClosesByDateRange fetches daily closes for a symbol within a date range,
// using Unix-timestamp period parameters. Used for historical backfills and
// the dip-recovery analyzer's lookback window.
func (c *HTTPClient) ClosesByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Chart, error) {
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		startDate.Unix(),
		endDate.Unix(),
	)
	return c.fetchChart(ctx, url, symbol)
}

func (c *HTTPClient) fetchChart(ctx context.Context, url, symbol string) (Chart, error) {
	resp, err := c.query(ctx, url)
	if err != nil {
		return Chart{}, err
	}
	if len(resp.Chart.Result) == 0 {
		return Chart{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return parseChart(resp)
}

// parseChart converts a raw chart response into the internal Chart form,
// validating that timestamps and close prices are present and aligned.
func parseChart(resp Response) (Chart, error) {
	result := resp.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return Chart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return Chart{}, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return Chart{}, fmt.Errorf("mismatched data lengths")
	}

	closes := make([]Close, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closes[i] = Close{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Price: result.Indicators.Quote[0].Close[i],
		}
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.Shortname
	}

	return Chart{
		Symbol:   result.Meta.Symbol,
		Currency: result.Meta.Currency,
		Name:     name,
		Closes:   closes,
	}, nil
}

// query executes the HTTP request and decodes the chart response, surfacing
// feed-level errors carried in the response body.
func (c *HTTPClient) query(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	if key := c.currentAPIKey(); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("price feed error: %s", *response.Chart.Error)
	}

	return response, nil
}
