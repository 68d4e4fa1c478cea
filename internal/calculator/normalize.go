package calculator

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"StockScope/internal/model"
)

// DefaultLocation is the target timezone of normalized series (US/Eastern).
var DefaultLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

// Normalize converts a raw series into a timezone-aware NormalizedSeries in loc.
// Naive timestamps are asserted to be UTC before conversion. Record order and
// count are preserved. A nil loc selects DefaultLocation. Bars with a NaN or
// infinite price or a negative volume fail with model.ErrInvalidRecord.
func Normalize(raw *model.RawSeries, loc *time.Location) (*model.NormalizedSeries, error) {
	if raw.Len() == 0 {
		return nil, model.ErrEmptyInput
	}
	if loc == nil {
		loc = DefaultLocation
	}

	records := make([]model.Record, len(raw.Bars))
	for i, bar := range raw.Bars {
		if err := checkBar(bar); err != nil {
			return nil, fmt.Errorf("bar %d at %s: %w", i, bar.Time.Format(time.RFC3339), err)
		}
		records[i] = model.Record{
			Datetime: localize(bar.Time, raw.Zone).In(loc),
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			Volume:   bar.Volume,
		}
	}

	return &model.NormalizedSeries{
		Symbol:   raw.Symbol,
		Period:   raw.Period,
		Interval: raw.Interval,
		Location: loc,
		Records:  records,
	}, nil
}

// localize pins t to a concrete instant. Naive values keep their wall clock
// and are read as UTC.
func localize(t time.Time, zone *time.Location) time.Time {
	if zone == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t.In(zone)
}

func checkBar(bar model.OHLCV) error {
	for _, p := range [...]float64{bar.Open, bar.High, bar.Low, bar.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: non-finite price", model.ErrInvalidRecord)
		}
	}
	if math.IsNaN(bar.Volume) || bar.Volume < 0 {
		return fmt.Errorf("%w: volume %v", model.ErrInvalidRecord, bar.Volume)
	}
	return nil
}
