package model

import "time"

// AssetPrice is one daily close for an asset, fetched from the price feed.
type AssetPrice struct {
	ID      string    `json:"id"`
	AssetID string    `json:"assetId"`
	Date    time.Time `json:"date"`
	Price   float64   `json:"price"`
}

// PriceQuote is the current-price view for an asset: the resolved price
// (test price override or latest stored close) and when it was last fetched.
type PriceQuote struct {
	AssetID     string    `json:"assetId"`
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	IsTestPrice bool      `json:"isTestPrice"`
	AsOf        time.Time `json:"asOf"`
}

// PriceRefreshResult summarizes a refresh run across assets.
type PriceRefreshResult struct {
	Refreshed int      `json:"refreshed"`
	Skipped   int      `json:"skipped"`
	Failed    []string `json:"failed,omitempty"`
}
