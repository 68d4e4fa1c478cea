package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42", "", nil).SetBaseURL(srv.URL)
	if err := n.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/bottok/sendMessage" {
		t.Errorf("unexpected path %s", path)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	retryBackoff = time.Millisecond
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42", "", nil).SetBaseURL(srv.URL)
	if err := n.SendWithRetry(context.Background(), "hello", 3); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	atomic.StoreInt32(&calls, -100)
	if err := n.SendWithRetry(context.Background(), "hello", 1); err == nil {
		t.Error("expected retries to be exhausted")
	}
}

func TestTelegramNotifier_Polling(t *testing.T) {
	pollRetryDelay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 4)
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		if atomic.AddInt32(&polls, 1) == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":"/help","chat":{"id":42}}},
				{"update_id":8,"message":{"text":"/help","chat":{"id":99}}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42", "", nil).SetBaseURL(srv.URL)
	var handled int32
	go n.StartPolling(ctx, func(_ context.Context, cmd string) string {
		atomic.AddInt32(&handled, 1)
		return "reply to " + cmd
	})

	select {
	case r := <-replies:
		if r != "reply to /help" {
			t.Errorf("unexpected reply %q", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	if h := atomic.LoadInt32(&handled); h != 1 {
		t.Errorf("expected only the configured chat to be handled, got %d", h)
	}
}

func TestFormatQuote(t *testing.T) {
	series := (&model.NormalizedSeries{Records: make([]model.Record, 2)}).
		WithColumn("SMA 2", []null.Float{{}, null.FloatFrom(11.5)}).
		WithColumn("SMA 20", make([]null.Float, 2))
	d := &model.Dashboard{
		Request: model.Request{Ticker: "AAPL", Period: model.Period1d, Interval: "1m"},
		Series:  series,
		Metrics: &model.Metrics{
			LastClose: 12, ReferenceClose: 11, PriceChange: 1,
			PercentChange: null.FloatFrom(9.090909), PeriodHigh: 13, PeriodLow: 9, TotalVolume: 2_500_000,
		},
	}

	out := FormatQuote(d)
	for _, want := range []string{"<b>AAPL</b>", "Last: 12.00 (+1.00, +9.09%)", "High: 13.00 | Low: 9.00", "Volume: 2.50M", "SMA 2: 11.50", "SMA 20: n/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestFormatDigest(t *testing.T) {
	at := time.Date(2024, 3, 1, 16, 5, 0, 0, time.UTC)
	out := FormatDigest([]DigestLine{
		{Ticker: "GOOG", Metrics: &model.Metrics{LastClose: 140.126, PercentChange: null.FloatFrom(-1.234)}},
		{Ticker: "GME", Metrics: &model.Metrics{LastClose: 0}},
		{Ticker: "MSFT", Err: errors.New("timeout")},
	}, at)
	for _, want := range []string{"2024-03-01 16:05 UTC", "GOOG: 140.13 (-1.23%)", "GME: 0.00 (n/a)", "MSFT: no data"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestVolume(t *testing.T) {
	tests := map[float64]string{950: "950", 1500: "1.5K", 2_500_000: "2.50M", 3_200_000_000: "3.20B"}
	for in, want := range tests {
		if got := volume(in); got != want {
			t.Errorf("%v: expected %s, got %s", in, want, got)
		}
	}
}
