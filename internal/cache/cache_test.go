package cache

import (
	"context"
	"testing"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

func TestDashboardKey_IndicatorOrder(t *testing.T) {
	a := model.Request{
		Ticker:     "aapl",
		Period:     model.Period1mo,
		Interval:   "1d",
		Chart:      model.ChartLine,
		Indicators: []model.WindowSpec{{Kind: model.IndicatorSMA, Length: 20}, {Kind: model.IndicatorEMA, Length: 20}},
	}
	b := a
	b.Ticker = "AAPL"
	b.Indicators = []model.WindowSpec{{Kind: model.IndicatorEMA, Length: 20}, {Kind: model.IndicatorSMA, Length: 20}}

	if DashboardKey(a) != DashboardKey(b) {
		t.Errorf("expected equal keys:\n%s\n%s", DashboardKey(a), DashboardKey(b))
	}

	c := a
	c.Period = model.Period1y
	if DashboardKey(a) == DashboardKey(c) {
		t.Error("expected period to change the key")
	}

	d := a
	d.Overlays = []string{"SMA 20"}
	if DashboardKey(a) == DashboardKey(d) {
		t.Error("expected overlays to change the key")
	}
}

func TestDashboardKey_DisplayAndOverlayOrder(t *testing.T) {
	base := model.Request{
		Ticker:   "AAPL",
		Period:   model.Period1d,
		Interval: "1m",
		Chart:    model.ChartLine,
		Overlays: []string{"EMA 20", "SMA 20"},
		Display:  model.DisplayOptions{Width: 800, RangeSlider: null.BoolFrom(true)},
	}

	tests := []struct {
		name   string
		modify func(r *model.Request)
	}{
		{"width", func(r *model.Request) { r.Display.Width = 1200 }},
		{"height", func(r *model.Request) { r.Display.Height = 600 }},
		{"rangeslider off", func(r *model.Request) { r.Display.RangeSlider = null.BoolFrom(false) }},
		{"rangeslider unset", func(r *model.Request) { r.Display.RangeSlider = null.Bool{} }},
		{"axis title", func(r *model.Request) { r.Display.YAxisTitle = "USD" }},
		{"overlay order", func(r *model.Request) { r.Overlays = []string{"SMA 20", "EMA 20"} }},
	}
	for _, tt := range tests {
		r := base
		r.Overlays = append([]string(nil), base.Overlays...)
		tt.modify(&r)
		if DashboardKey(base) == DashboardKey(r) {
			t.Errorf("%s: expected a different key, both are %s", tt.name, DashboardKey(r))
		}
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(time.Minute, time.Minute)

	if _, ok, _ := m.GetBytes(ctx, "missing"); ok {
		t.Error("expected miss")
	}
	if err := m.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := m.GetBytes(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Errorf("expected hit v, got %q ok=%v err=%v", b, ok, err)
	}

	_ = m.SetBytes(ctx, "short", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok, _ := m.GetBytes(ctx, "short"); ok {
		t.Error("expected entry to expire")
	}
}
