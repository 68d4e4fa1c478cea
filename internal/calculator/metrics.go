package calculator

import (
	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

// PercentChange returns change as a percentage of reference.
func PercentChange(change, reference float64) (float64, error) {
	if reference == 0 {
		return 0, model.ErrDivisionByZero
	}
	return change / reference * 100, nil
}

// ComputeMetrics derives the summary snapshot of a series.
//
// Change is measured against the Close of the first record in the window,
// not against a previous session close. When that reference is zero the
// returned PercentChange is invalid rather than an error.
func ComputeMetrics(series *model.NormalizedSeries) (model.Metrics, error) {
	if series.Len() == 0 {
		return model.Metrics{}, model.ErrEmptyInput
	}
	records := series.Records

	last := records[len(records)-1].Close
	ref := records[0].Close
	change := last - ref

	var pct null.Float
	if p, err := PercentChange(change, ref); err == nil {
		pct = null.FloatFrom(p)
	}

	high, low, err := PeriodRange(records)
	if err != nil {
		return model.Metrics{}, err
	}

	return model.Metrics{
		LastClose:      last,
		ReferenceClose: ref,
		PriceChange:    change,
		PercentChange:  pct,
		PeriodHigh:     high,
		PeriodLow:      low,
		TotalVolume:    TotalVolume(records),
	}, nil
}
