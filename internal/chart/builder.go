// Package chart turns a normalized series into a renderer-agnostic ChartSpec.
package chart

import (
	"fmt"
	"strings"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

const (
	defaultXAxisTitle  = "Date"
	defaultYAxisTitle  = "Price"
	defaultLegendTitle = "Legend"

	// oscillatorAxis holds bounded indicators that do not share the price scale.
	oscillatorAxis = "y2"
)

// Build produces a chart description for series. Requested overlays that are
// not present on the series are skipped without error.
func Build(series *model.NormalizedSeries, kind model.ChartKind, overlays []string, display model.DisplayOptions) (*model.ChartSpec, error) {
	if series.Len() == 0 {
		return nil, model.ErrEmptyInput
	}

	x := series.Datetimes()
	primary, err := primaryTrace(series, kind, x)
	if err != nil {
		return nil, err
	}

	spec := &model.ChartSpec{
		Kind:     kind,
		Primary:  primary,
		Overlays: []model.Trace{},
		Layout:   layoutFor(series, display),
	}

	seen := make(map[string]bool, len(overlays))
	for _, name := range overlays {
		if seen[name] {
			continue
		}
		seen[name] = true
		col, ok := series.Column(name)
		if !ok {
			continue
		}
		trace := model.Trace{Name: name, Type: model.TraceLine, X: x, Y: col}
		if strings.HasPrefix(name, string(model.IndicatorRSI)+" ") {
			trace.Axis = oscillatorAxis
		}
		spec.Overlays = append(spec.Overlays, trace)
	}
	return spec, nil
}

func primaryTrace(series *model.NormalizedSeries, kind model.ChartKind, x []time.Time) (model.Trace, error) {
	n := series.Len()
	switch kind {
	case model.ChartCandlestick:
		t := model.Trace{
			Name:  series.Symbol,
			Type:  model.TraceCandlestick,
			X:     x,
			Open:  make([]float64, n),
			High:  make([]float64, n),
			Low:   make([]float64, n),
			Close: make([]float64, n),
		}
		for i, r := range series.Records {
			t.Open[i], t.High[i], t.Low[i], t.Close[i] = r.Open, r.High, r.Low, r.Close
		}
		return t, nil
	case model.ChartLine:
		t := model.Trace{Name: series.Symbol, Type: model.TraceLine, X: x, Y: make([]null.Float, n)}
		for i, c := range series.Closes() {
			t.Y[i] = null.FloatFrom(c)
		}
		return t, nil
	default:
		return model.Trace{}, fmt.Errorf("%w: %q", model.ErrUnknownChartKind, kind)
	}
}

func layoutFor(series *model.NormalizedSeries, d model.DisplayOptions) model.Layout {
	l := model.Layout{
		Title:       d.Title,
		XAxisTitle:  d.XAxisTitle,
		YAxisTitle:  d.YAxisTitle,
		LegendTitle: d.LegendTitle,
		RangeSlider: !d.RangeSlider.Valid || d.RangeSlider.Bool,
		Width:       d.Width,
		Height:      d.Height,
	}
	if l.Title == "" {
		l.Title = fmt.Sprintf("%s %s chart", series.Symbol, series.Period)
	}
	if l.XAxisTitle == "" {
		l.XAxisTitle = defaultXAxisTitle
	}
	if l.YAxisTitle == "" {
		l.YAxisTitle = defaultYAxisTitle
	}
	if l.LegendTitle == "" {
		l.LegendTitle = defaultLegendTitle
	}
	return l
}
