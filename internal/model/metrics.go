package model

import "github.com/guregu/null/v5"

// Metrics is a scalar snapshot derived from one normalized series.
//
// PercentChange is invalid (JSON null) when the reference close is zero.
type Metrics struct {
	LastClose      float64    `json:"last_close"`
	ReferenceClose float64    `json:"reference_close"`
	PriceChange    float64    `json:"price_change"`
	PercentChange  null.Float `json:"percent_change"`
	PeriodHigh     float64    `json:"period_high"`
	PeriodLow      float64    `json:"period_low"`
	TotalVolume    float64    `json:"total_volume"`
}
