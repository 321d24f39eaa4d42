package service

import "math"

// RoundingPrecision is the factor used for two-decimal monetary rounding.
const RoundingPrecision = 100.0

// ShareEpsilon is the share-count tolerance below which a wallet counts as
// fully sold. Share quantities are displayed to five decimals, so anything
// under this is rounding residue.
const ShareEpsilon = 1e-5

// round rounds a float64 value to two decimal places. Used throughout the
// service layer to keep monetary values in API responses consistent.
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// roundShares rounds a share quantity to five decimal places.
func roundShares(value float64) float64 {
	return math.Round(value*100000) / 100000
}
