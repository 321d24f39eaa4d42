package pricefeed

import "time"

// Response represents the raw JSON response structure from the chart endpoint.
// This maps directly to the Yahoo-compatible chart API response format,
// containing nested structures for metadata, timestamps, and price quotes.
type Response struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
				LongName     string `json:"longName"`
				Shortname    string `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Chart is the parsed internal representation of a symbol's price series:
// symbol metadata plus one Close per trading day, oldest first.
type Chart struct {
	Symbol   string  `json:"symbol"`
	Currency string  `json:"currency"`
	Name     string  `json:"name"`
	Closes   []Close `json:"closes"`
}

// Close is a single day's closing price for a symbol. The date's time
// component is midnight UTC.
type Close struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// CloseForDate searches the chart for the close matching a specific date,
// comparing date-only (both sides truncated to midnight UTC).
func (c Chart) CloseForDate(target time.Time) (Close, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, cl := range c.Closes {
		if cl.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return cl, true
		}
	}
	return Close{}, false
}

// LastClose returns the most recent close in the chart.
// The second return value is false if the chart is empty.
func (c Chart) LastClose() (Close, bool) {
	if len(c.Closes) == 0 {
		return Close{}, false
	}
	return c.Closes[len(c.Closes)-1], true
}
