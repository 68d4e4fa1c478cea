package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFromWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := FromWriter(&buf, zerolog.InfoLevel).With(String("component", "collector"))

	log.Info("pipeline run",
		String("ticker", "AAPL"),
		Int("records", 390),
		Float("last_close", 189.5),
		Duration("elapsed", 1500*time.Millisecond),
		Strings("indicators", []string{"SMA 20", "EMA 20"}),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		"level":      "info",
		"message":    "pipeline run",
		"component":  "collector",
		"ticker":     "AAPL",
		"records":    float64(390),
		"last_close": 189.5,
		"elapsed":    float64(1500),
		"indicators": "SMA 20, EMA 20",
		"error":      "boom",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: expected %v, got %v", k, want, entry[k])
		}
	}
}

func TestFromWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := FromWriter(&buf, zerolog.WarnLevel)
	log.Info("hidden")
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}
	log.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn to be written")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}
