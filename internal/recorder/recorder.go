package recorder

import (
	"context"
	"time"

	"StockScope/internal/model"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
)

// Trigger names what caused a snapshot to be recorded.
type Trigger string

const (
	TriggerRefresh Trigger = "refresh"
	TriggerAPI     Trigger = "api"
	TriggerCommand Trigger = "command"
)

// Snapshot holds the metrics of one dashboard run.
type Snapshot struct {
	ID             string     `json:"id"`
	RunID          string     `json:"run_id,omitempty"`
	Ticker         string     `json:"ticker"`
	Period         string     `json:"period"`
	Interval       string     `json:"interval"`
	Source         string     `json:"source"`
	Trigger        Trigger    `json:"trigger"`
	Records        int        `json:"records"`
	LastClose      float64    `json:"last_close"`
	ReferenceClose float64    `json:"reference_close"`
	PriceChange    float64    `json:"price_change"`
	PercentChange  null.Float `json:"percent_change"`
	PeriodHigh     float64    `json:"period_high"`
	PeriodLow      float64    `json:"period_low"`
	TotalVolume    float64    `json:"total_volume"`
	RecordedAt     time.Time  `json:"recorded_at"`
}

// NewSnapshot captures the metrics of d. d.Metrics must be set.
func NewSnapshot(d *model.Dashboard, trigger Trigger, runID string) *Snapshot {
	m := d.Metrics
	return &Snapshot{
		ID:             uuid.NewString(),
		RunID:          runID,
		Ticker:         d.Request.Ticker,
		Period:         string(d.Request.Period),
		Interval:       d.Request.Interval,
		Source:         d.Source,
		Trigger:        trigger,
		Records:        d.Series.Len(),
		LastClose:      m.LastClose,
		ReferenceClose: m.ReferenceClose,
		PriceChange:    m.PriceChange,
		PercentChange:  m.PercentChange,
		PeriodHigh:     m.PeriodHigh,
		PeriodLow:      m.PeriodLow,
		TotalVolume:    m.TotalVolume,
		RecordedAt:     d.GeneratedAt,
	}
}

// RefreshRun summarizes one scheduled watchlist refresh.
type RefreshRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Note       string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *Snapshot) error
	RecordRun(ctx context.Context, run *RefreshRun) error
	RecentSnapshots(ctx context.Context, ticker string, limit int) ([]Snapshot, error)
	Close() error
}
