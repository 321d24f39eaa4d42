package testutil

import (
	"context"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/pricefeed"
)

// MockFeedClient is a mock implementation of pricefeed.Client for testing.
// It returns predefined chart data instead of making actual HTTP calls.
type MockFeedClient struct {
	// MockChart is the chart to return from fetch methods
	MockChart pricefeed.Chart
	// MockError is the error to return from fetch methods
	MockError error
	// QueryCount tracks how many times a fetch method was called
	QueryCount int
}

// NewMockFeedClient creates a mock feed client with 5 days of default test
// data ending yesterday.
func NewMockFeedClient() *MockFeedClient {
	return &MockFeedClient{
		MockChart: CreateMockChart(5),
	}
}

// RecentCloses returns the configured chart and error.
func (m *MockFeedClient) RecentCloses(_ context.Context, _ string) (pricefeed.Chart, error) {
	m.QueryCount++
	if m.MockError != nil {
		return pricefeed.Chart{}, m.MockError
	}
	return m.MockChart, nil
}

// ClosesByDateRange returns the configured chart and error.
func (m *MockFeedClient) ClosesByDateRange(_ context.Context, _ string, _, _ time.Time) (pricefeed.Chart, error) {
	m.QueryCount++
	if m.MockError != nil {
		return pricefeed.Chart{}, m.MockError
	}
	return m.MockChart, nil
}

// WithError configures the mock to return the specified error.
func (m *MockFeedClient) WithError(err error) *MockFeedClient {
	m.MockError = err
	return m
}

// WithChart configures the mock to return the specified chart.
func (m *MockFeedClient) WithChart(chart pricefeed.Chart) *MockFeedClient {
	m.MockChart = chart
	return m
}

// WithCloses configures the mock with an explicit close series.
func (m *MockFeedClient) WithCloses(closes []pricefeed.Close) *MockFeedClient {
	m.MockChart = pricefeed.Chart{
		Symbol:   "TEST",
		Currency: "USD",
		Name:     "Test Asset Inc.",
		Closes:   closes,
	}
	return m
}

// CreateMockChart builds a chart with `days` consecutive daily closes ending
// yesterday, starting at 100.0 and drifting up 0.5 per day.
func CreateMockChart(days int) pricefeed.Chart {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	closes := make([]pricefeed.Close, days)
	for i := 0; i < days; i++ {
		closes[i] = pricefeed.Close{
			Date:  yesterday.AddDate(0, 0, -days+i+1),
			Price: 100.0 + float64(i)*0.5,
		}
	}

	return pricefeed.Chart{
		Symbol:   "TEST",
		Currency: "USD",
		Name:     "Test Asset Inc.",
		Closes:   closes,
	}
}

// CreateMockChartForDates builds a chart with one close per given price,
// dated consecutively starting at startDate.
func CreateMockChartForDates(startDate time.Time, prices []float64) pricefeed.Chart {
	closes := make([]pricefeed.Close, len(prices))
	for i, price := range prices {
		closes[i] = pricefeed.Close{
			Date:  startDate.AddDate(0, 0, i),
			Price: price,
		}
	}

	return pricefeed.Chart{
		Symbol:   "TEST",
		Currency: "USD",
		Name:     "Test Asset Inc.",
		Closes:   closes,
	}
}
