package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"
)

// Period is the requested historical span of a fetch.
type Period string

const (
	Period1d  Period = "1d"
	Period1wk Period = "1wk"
	Period1mo Period = "1mo"
	Period1y  Period = "1y"
	PeriodMax Period = "max"
)

// Periods lists every supported period in display order.
var Periods = []Period{Period1d, Period1wk, Period1mo, Period1y, PeriodMax}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	switch p {
	case Period1d, Period1wk, Period1mo, Period1y, PeriodMax:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the sampling granularity used when none is requested.
func DefaultInterval(p Period) string {
	switch p {
	case Period1d:
		return "1m"
	case Period1wk:
		return "30m"
	case Period1mo:
		return "1d"
	default:
		return "1wk"
	}
}

// ChartKind selects the primary trace of a chart.
type ChartKind string

const (
	ChartLine        ChartKind = "line"
	ChartCandlestick ChartKind = "candlestick"
)

// IndicatorKind names a derived time-series computed from Close.
type IndicatorKind string

const (
	IndicatorSMA IndicatorKind = "SMA"
	IndicatorEMA IndicatorKind = "EMA"
	IndicatorRSI IndicatorKind = "RSI"
)

// WindowSpec requests one indicator of a given kind and window length.
type WindowSpec struct {
	Kind   IndicatorKind
	Length int
}

// ColumnName is the canonical column name of the indicator, e.g. "SMA 20".
func (w WindowSpec) ColumnName() string {
	return string(w.Kind) + " " + strconv.Itoa(w.Length)
}

func (w WindowSpec) String() string { return w.ColumnName() }

// ParseWindowSpec parses "SMA 20", "sma20" or "EMA_50" into a WindowSpec.
func ParseWindowSpec(s string) (WindowSpec, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	raw = strings.NewReplacer("_", "", " ", "", "-", "").Replace(raw)
	for _, kind := range []IndicatorKind{IndicatorSMA, IndicatorEMA, IndicatorRSI} {
		if !strings.HasPrefix(raw, string(kind)) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(raw, string(kind)))
		if err != nil {
			return WindowSpec{}, fmt.Errorf("%w: %q", ErrUnknownIndicator, s)
		}
		if n <= 0 {
			return WindowSpec{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
		}
		return WindowSpec{Kind: kind, Length: n}, nil
	}
	return WindowSpec{}, fmt.Errorf("%w: %q", ErrUnknownIndicator, s)
}

// ParseWindowSpecs parses a list of indicator names, dropping duplicates.
func ParseWindowSpecs(names []string) ([]WindowSpec, error) {
	specs := make([]WindowSpec, 0, len(names))
	seen := make(map[WindowSpec]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		w, err := ParseWindowSpec(name)
		if err != nil {
			return nil, err
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		specs = append(specs, w)
	}
	return specs, nil
}

// DisplayOptions carries layout directives for the render collaborator.
// Empty titles and an unset RangeSlider fall back to chart defaults.
type DisplayOptions struct {
	Title       string    `json:"title"`
	XAxisTitle  string    `json:"xaxis_title"`
	YAxisTitle  string    `json:"yaxis_title"`
	LegendTitle string    `json:"legend_title"`
	RangeSlider null.Bool `json:"rangeslider"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
}

// Request is the full parameter set of one pipeline run.
type Request struct {
	Ticker     string         `json:"ticker"`
	Period     Period         `json:"period"`
	Interval   string         `json:"interval"`
	Chart      ChartKind      `json:"chart"`
	Indicators []WindowSpec   `json:"-"`
	Overlays   []string       `json:"overlays"`
	Display    DisplayOptions `json:"display"`
}

// IndicatorNames returns the canonical column names of the requested indicators.
func (r Request) IndicatorNames() []string {
	names := make([]string, len(r.Indicators))
	for i, w := range r.Indicators {
		names[i] = w.ColumnName()
	}
	return names
}
