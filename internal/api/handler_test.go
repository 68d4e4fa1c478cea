package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"StockScope/internal/cache"
	"StockScope/internal/collector"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/recorder"
)

type countingPipeline struct {
	inner Pipeline
	calls int32
	last  model.Request
}

func (p *countingPipeline) Collect(ctx context.Context, req model.Request) (*model.Dashboard, error) {
	atomic.AddInt32(&p.calls, 1)
	p.last = req
	return p.inner.Collect(ctx, req)
}

type testEnv struct {
	server   *Server
	pipeline *countingPipeline
	recorder *recorder.SQLiteRecorder
}

func newTestEnv(t *testing.T, fetcher collector.Fetcher, opts ...ServerOption) *testEnv {
	t.Helper()
	m := metrics.New()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })

	p := &countingPipeline{inner: collector.NewCollector(fetcher, nil, nil, m)}
	h := NewDashboardHandler(p, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, rec,
		[]string{"GOOG", "AAPL", "MSFT", "GME"},
		Defaults{Ticker: "AAPL", Period: model.Period1d, Chart: model.ChartLine, Indicators: []string{"SMA 20", "EMA 20"}},
		nil, m)
	return &testEnv{server: NewServer(h, nil, m, opts...), pipeline: p, recorder: rec}
}

func (e *testEnv) get(t *testing.T, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	e.server.Echo().ServeHTTP(rec, req)

	var body map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v\n%s", target, err, rec.Body.String())
		}
	}
	return rec, body
}

func TestDashboard_DefaultsAndCache(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 150, Count: 40})

	rec, body := env.get(t, "/api/dashboard?ticker=msft&period=1mo&chart=candlestick")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("expected cache miss, got %q", rec.Header().Get("X-Cache"))
	}
	data := body["data"].(map[string]interface{})
	if got := data["indicators"].([]interface{}); len(got) != 2 {
		t.Errorf("expected default indicators, got %v", got)
	}
	chart := data["chart"].(map[string]interface{})
	if chart["kind"] != "candlestick" {
		t.Errorf("expected candlestick chart, got %v", chart["kind"])
	}
	layout := chart["layout"].(map[string]interface{})
	if layout["title"] != "MSFT 1mo chart" || layout["xaxis_rangeslider_visible"] != true {
		t.Errorf("unexpected layout %v", layout)
	}
	if tail := data["tail"].([]interface{}); len(tail) != 5 {
		t.Errorf("expected tail of 5, got %d", len(tail))
	}
	if env.pipeline.last.Interval != "1d" {
		t.Errorf("expected default interval 1d for 1mo, got %s", env.pipeline.last.Interval)
	}

	// same request with indicators in another order hits the cache
	rec, _ = env.get(t, "/api/dashboard?ticker=MSFT&period=1mo&chart=candlestick&indicators=EMA%2020,SMA%2020&overlays=SMA%2020,EMA%2020")
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("expected cache hit, got %q", rec.Header().Get("X-Cache"))
	}
	if n := atomic.LoadInt32(&env.pipeline.calls); n != 1 {
		t.Errorf("expected 1 pipeline run, got %d", n)
	}

	snaps, err := env.recorder.RecentSnapshots(context.Background(), "MSFT", 10)
	if err != nil || len(snaps) != 1 || snaps[0].Trigger != recorder.TriggerAPI {
		t.Errorf("expected one api snapshot, got %v %v", snaps, err)
	}
}

func TestDashboard_OverlaysAndDisplay(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 20, Count: 5})

	rec, body := env.get(t, "/api/dashboard?ticker=GME&indicators=SMA%2020&overlays=SMA%2020,EMA%2050&title=Time%20Series%20Data%20with%20Rangeslider&rangeslider=false&width=900")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	chart := body["data"].(map[string]interface{})["chart"].(map[string]interface{})
	overlays := chart["overlays"].([]interface{})
	if len(overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(overlays))
	}
	ys := overlays[0].(map[string]interface{})["y"].([]interface{})
	for i, y := range ys {
		if y != nil {
			t.Errorf("y[%d]: expected null for a window longer than the series, got %v", i, y)
		}
	}
	layout := chart["layout"].(map[string]interface{})
	if layout["title"] != "Time Series Data with Rangeslider" || layout["xaxis_rangeslider_visible"] != false || layout["width"] != float64(900) {
		t.Errorf("display options not applied: %v", layout)
	}
}

func TestDashboard_CacheKeepsDisplayApart(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 50, Count: 30})

	rec, _ := env.get(t, "/api/dashboard?ticker=AAPL&width=800&rangeslider=true&overlays=EMA%2020,SMA%2020")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected 200 MISS, got %d %q", rec.Code, rec.Header().Get("X-Cache"))
	}

	rec, body := env.get(t, "/api/dashboard?ticker=AAPL&width=1200&rangeslider=false&overlays=SMA%2020,EMA%2020")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("different display options must not share a cache entry, got %q", rec.Header().Get("X-Cache"))
	}
	chart := body["data"].(map[string]interface{})["chart"].(map[string]interface{})
	layout := chart["layout"].(map[string]interface{})
	if layout["width"] != float64(1200) || layout["xaxis_rangeslider_visible"] != false {
		t.Errorf("unexpected layout %v", layout)
	}
	overlays := chart["overlays"].([]interface{})
	if len(overlays) != 2 || overlays[0].(map[string]interface{})["name"] != "SMA 20" {
		t.Errorf("expected overlays in request order, got %v", overlays)
	}
	if n := atomic.LoadInt32(&env.pipeline.calls); n != 2 {
		t.Errorf("expected 2 pipeline runs, got %d", n)
	}
}

func TestDashboard_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher collector.Fetcher
		target  string
		status  int
		message string
	}{
		{"no data", &collector.MockFetcher{Bars: []model.OHLCV{}}, "/api/dashboard?ticker=AAPL", http.StatusNotFound, noDataMessage},
		{"fetch failure", &collector.MockFetcher{Err: errors.New("dial tcp: refused")}, "/api/dashboard?ticker=AAPL", http.StatusNotFound, noDataMessage},
		{"bad period", &collector.MockFetcher{Price: 1}, "/api/dashboard?ticker=AAPL&period=2y", http.StatusBadRequest, "period must be one of"},
		{"bad chart", &collector.MockFetcher{Price: 1}, "/api/dashboard?ticker=AAPL&chart=area", http.StatusBadRequest, "chart must be one of"},
		{"bad indicator", &collector.MockFetcher{Price: 1}, "/api/dashboard?ticker=AAPL&indicators=WMA%205", http.StatusBadRequest, "unknown indicator"},
		{"bad ticker", &collector.MockFetcher{Price: 1}, "/api/dashboard?ticker=A%20B", http.StatusBadRequest, "valid ticker"},
		{"bad width", &collector.MockFetcher{Price: 1}, "/api/dashboard?ticker=AAPL&width=-1", http.StatusBadRequest, "width must be greater"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.fetcher)
			rec, _ := env.get(t, tt.target)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("expected %q in %s", tt.message, rec.Body.String())
			}
		})
	}
}

func TestListTickers(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 1})
	rec, body := env.get(t, "/api/tickers")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if got := data["tickers"].([]interface{}); len(got) != 4 || got[0] != "GOOG" {
		t.Errorf("unexpected tickers %v", got)
	}
	if got := data["periods"].([]interface{}); len(got) != 5 {
		t.Errorf("unexpected periods %v", got)
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 42, Count: 10})
	for _, period := range []string{"1d", "1wk", "1mo"} {
		if rec, _ := env.get(t, "/api/dashboard?ticker=GOOG&period="+period); rec.Code != http.StatusOK {
			t.Fatalf("seed %s: %d", period, rec.Code)
		}
	}

	rec, body := env.get(t, "/api/history/GOOG?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := body["data"].(map[string]interface{})
	if data["total"] != float64(2) {
		t.Errorf("expected 2 rows, got %v", data["total"])
	}

	rec, _ = env.get(t, "/api/history/GOOG?limit=9999")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized limit, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 1})
	if rec, _ := env.get(t, "/api/health"); rec.Code != http.StatusOK || rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("unexpected health response %d %v", rec.Code, rec.Header())
	}
	env.get(t, "/api/dashboard?ticker=AAPL")

	rec, _ := env.get(t, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "stockscope_fetches_total") {
		t.Errorf("expected prometheus output, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, &collector.MockFetcher{Price: 1}, WithRateLimit(1, 2))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := env.get(t, "/api/health")
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}
