package calculator

import (
	"errors"
	"testing"
	"time"

	"StockScope/internal/model"
)

func TestComputeMetrics_TwoRecords(t *testing.T) {
	t1 := time.Date(2024, 1, 2, 9, 30, 0, 0, DefaultLocation)
	series := &model.NormalizedSeries{Records: []model.Record{
		{Datetime: t1, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Datetime: t1.Add(time.Minute), Open: 11, High: 13, Low: 10, Close: 12, Volume: 150},
	}}

	m, err := ComputeMetrics(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "last close", m.LastClose, 12, 1e-9)
	assertClose(t, "reference close", m.ReferenceClose, 11, 1e-9)
	assertClose(t, "price change", m.PriceChange, 1, 1e-9)
	if !m.PercentChange.Valid {
		t.Fatal("expected percent change to be defined")
	}
	assertClose(t, "percent change", m.PercentChange.Float64, 9.090909, 1e-6)
	assertClose(t, "period high", m.PeriodHigh, 13, 1e-9)
	assertClose(t, "period low", m.PeriodLow, 9, 1e-9)
	assertClose(t, "total volume", m.TotalVolume, 250, 1e-9)
}

func TestComputeMetrics_ZeroReference(t *testing.T) {
	series := seriesFromCloses(0, 5, 7)
	m, err := ComputeMetrics(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PercentChange.Valid {
		t.Errorf("expected undefined percent change, got %.4f", m.PercentChange.Float64)
	}
	assertClose(t, "price change", m.PriceChange, 7, 1e-9)
}

func TestComputeMetrics_Deterministic(t *testing.T) {
	series := seriesFromCloses(101.5, 99.25, 103.75, 102, 98.5)
	a, err := ComputeMetrics(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := ComputeMetrics(series)
	if a != b {
		t.Errorf("metrics differ between runs: %+v vs %+v", a, b)
	}
}

func TestComputeMetrics_PercentMatchesChange(t *testing.T) {
	for _, closes := range [][]float64{{10, 12}, {250, 200}, {0.5, 0.75, 0.25}, {-4, 2}} {
		m, err := ComputeMetrics(seriesFromCloses(closes...))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertClose(t, "percent", m.PercentChange.Float64, m.PriceChange/m.ReferenceClose*100, 1e-9)
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	if _, err := ComputeMetrics(&model.NormalizedSeries{}); !errors.Is(err, model.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestPercentChange_DivisionByZero(t *testing.T) {
	if _, err := PercentChange(3, 0); !errors.Is(err, model.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestPeriodRange(t *testing.T) {
	high, low, err := PeriodRange(seriesFromCloses(5, 9, 3, 7).Records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "high", high, 10, 1e-9)
	assertClose(t, "low", low, 2, 1e-9)

	if _, _, err := PeriodRange(nil); !errors.Is(err, model.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}
