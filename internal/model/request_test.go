package model

import (
	"errors"
	"testing"
)

func TestParseWindowSpec(t *testing.T) {
	tests := []struct {
		in   string
		want WindowSpec
	}{
		{"SMA 20", WindowSpec{IndicatorSMA, 20}},
		{"sma20", WindowSpec{IndicatorSMA, 20}},
		{"EMA_50", WindowSpec{IndicatorEMA, 50}},
		{" ema-9 ", WindowSpec{IndicatorEMA, 9}},
		{"RSI 14", WindowSpec{IndicatorRSI, 14}},
	}
	for _, tt := range tests {
		got, err := ParseWindowSpec(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParseWindowSpec_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"WMA 20", ErrUnknownIndicator},
		{"SMA", ErrUnknownIndicator},
		{"SMA x", ErrUnknownIndicator},
		{"SMA 0", ErrInvalidWindow},
		{"EMA 00", ErrInvalidWindow},
	}
	for _, tt := range tests {
		if _, err := ParseWindowSpec(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, err)
		}
	}
}

func TestParseWindowSpecs_Dedup(t *testing.T) {
	got, err := ParseWindowSpecs([]string{"SMA 20", "", "sma20", "EMA 20"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 specs, got %d: %v", len(got), got)
	}
	if got[0].ColumnName() != "SMA 20" || got[1].ColumnName() != "EMA 20" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestDefaultInterval(t *testing.T) {
	tests := map[Period]string{
		Period1d:  "1m",
		Period1wk: "30m",
		Period1mo: "1d",
		Period1y:  "1wk",
		PeriodMax: "1wk",
	}
	for p, want := range tests {
		if got := DefaultInterval(p); got != want {
			t.Errorf("%s: expected %s, got %s", p, want, got)
		}
	}
	if Period("2y").Valid() {
		t.Error("expected 2y to be invalid")
	}
}
