package model

import "time"

// OHLCV represents a single candlestick bar as delivered by a data source.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// RawSeries holds price bars exactly as a fetcher returned them.
//
// A nil Zone means the bar timestamps are naive wall clock values with no
// timezone attached. A non-nil Zone means every bar time is an absolute
// instant reported in that zone.
type RawSeries struct {
	Symbol    string
	Period    Period
	Interval  string
	Zone      *time.Location
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (r *RawSeries) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Bars)
}

// Naive reports whether the bar timestamps carry no timezone.
func (r *RawSeries) Naive() bool { return r.Zone == nil }
