package calculator

import (
	"math"
	"testing"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func seriesFromCloses(closes ...float64) *model.NormalizedSeries {
	base := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	records := make([]model.Record, len(closes))
	for i, c := range closes {
		records[i] = model.Record{
			Datetime: base.Add(time.Duration(i) * time.Minute),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   100,
		}
	}
	return &model.NormalizedSeries{Symbol: "TEST", Period: model.Period1d, Interval: "1m", Location: time.UTC, Records: records}
}

func assertColumn(t *testing.T, label string, got []null.Float, want []float64, defined []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d entries, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].Valid != defined[i] {
			t.Errorf("%s[%d]: Valid=%v, want %v", label, i, got[i].Valid, defined[i])
			continue
		}
		if defined[i] {
			assertClose(t, label, got[i].Float64, want[i], 1e-9)
		}
	}
}
