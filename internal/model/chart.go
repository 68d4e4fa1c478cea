package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// TraceType identifies how a trace is drawn.
type TraceType string

const (
	TraceCandlestick TraceType = "candlestick"
	TraceLine        TraceType = "scatter"
)

// Trace is one plotted series. Candlestick traces fill Open/High/Low/Close,
// line traces fill Y.
type Trace struct {
	Name  string       `json:"name"`
	Type  TraceType    `json:"type"`
	Axis  string       `json:"yaxis,omitempty"`
	X     []time.Time  `json:"x"`
	Open  []float64    `json:"open,omitempty"`
	High  []float64    `json:"high,omitempty"`
	Low   []float64    `json:"low,omitempty"`
	Close []float64    `json:"close,omitempty"`
	Y     []null.Float `json:"y,omitempty"`
}

// Layout is chart-level display metadata.
type Layout struct {
	Title       string `json:"title"`
	XAxisTitle  string `json:"xaxis_title"`
	YAxisTitle  string `json:"yaxis_title"`
	LegendTitle string `json:"legend_title"`
	RangeSlider bool   `json:"xaxis_rangeslider_visible"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// ChartSpec is a purely descriptive chart handed to a renderer.
type ChartSpec struct {
	Kind     ChartKind `json:"kind"`
	Primary  Trace     `json:"primary"`
	Overlays []Trace   `json:"overlays"`
	Layout   Layout    `json:"layout"`
}
