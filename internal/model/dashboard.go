package model

import "time"

// Dashboard is the result of one full pipeline run.
// Metrics and Chart are nil until computed.
type Dashboard struct {
	Request     Request           `json:"request"`
	Indicators  []string          `json:"indicators"`
	Series      *NormalizedSeries `json:"series"`
	Metrics     *Metrics          `json:"metrics"`
	Chart       *ChartSpec        `json:"chart"`
	Tail        []Record          `json:"tail"`
	Source      string            `json:"source"`
	GeneratedAt time.Time         `json:"generated_at"`
}
