package calculator

import (
	"fmt"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

// AddIndicators returns a copy of series with one column per requested window.
// Recomputing an existing column replaces it with the same values. Windows
// longer than the series yield a present column with every entry invalid.
func AddIndicators(series *model.NormalizedSeries, windows []model.WindowSpec) (*model.NormalizedSeries, error) {
	if series.Len() == 0 {
		return nil, model.ErrEmptyInput
	}
	out := series.Clone()
	closes := series.Closes()
	for _, w := range windows {
		values, err := indicatorSeries(closes, w)
		if err != nil {
			return nil, err
		}
		out = out.WithColumn(w.ColumnName(), values)
	}
	return out, nil
}

func indicatorSeries(closes []float64, w model.WindowSpec) ([]null.Float, error) {
	if w.Length <= 0 {
		return nil, fmt.Errorf("%w: %s length %d", model.ErrInvalidWindow, w.Kind, w.Length)
	}
	switch w.Kind {
	case model.IndicatorSMA:
		return SMASeries(closes, w.Length), nil
	case model.IndicatorEMA:
		return EMASeries(closes, w.Length), nil
	case model.IndicatorRSI:
		return RSISeries(closes, w.Length), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownIndicator, w.Kind)
	}
}
