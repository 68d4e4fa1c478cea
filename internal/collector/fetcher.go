package collector

import (
	"context"

	"StockScope/internal/model"
)

// Fetcher retrieves raw price bars for one ticker over a period at an interval.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, period model.Period, interval string) (*model.RawSeries, error)
	Name() string
}
