package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"StockScope/internal/logger"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists snapshots to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the history API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id              TEXT PRIMARY KEY,
			run_id          TEXT,
			timestamp       INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			period          TEXT,
			bar_interval    TEXT,
			source          TEXT,
			trigger_kind    TEXT,
			records         INTEGER,
			last_close      REAL,
			reference_close REAL,
			price_change    REAL,
			percent_change  REAL,
			period_high     REAL,
			period_low      REAL,
			total_volume    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ticker_ts ON snapshots(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS refresh_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			succeeded   INTEGER,
			failed      INTEGER,
			note        TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(ctx context.Context, s *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots
		(id, run_id, timestamp, ticker, period, bar_interval, source, trigger_kind, records,
		 last_close, reference_close, price_change, percent_change,
		 period_high, period_low, total_volume)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.RunID, s.RecordedAt.UnixMilli(), strings.ToUpper(s.Ticker),
		s.Period, s.Interval, s.Source, string(s.Trigger), s.Records,
		s.LastClose, s.ReferenceClose, s.PriceChange, s.PercentChange,
		s.PeriodHigh, s.PeriodLow, s.TotalVolume,
	)
	return err
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *RefreshRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO refresh_runs
		(id, started_at, finished_at, succeeded, failed, note)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Succeeded, run.Failed, run.Note,
	)
	return err
}

// RecentSnapshots returns up to limit snapshots of ticker, newest first.
func (r *SQLiteRecorder) RecentSnapshots(ctx context.Context, ticker string, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, run_id, timestamp, ticker, period, bar_interval, source, trigger_kind, records,
		last_close, reference_close, price_change, percent_change,
		period_high, period_low, total_volume
		FROM snapshots WHERE ticker = ? ORDER BY timestamp DESC LIMIT ?`,
		strings.ToUpper(ticker), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var (
			s       Snapshot
			runID   sql.NullString
			ts      int64
			trigger string
		)
		if err := rows.Scan(&s.ID, &runID, &ts, &s.Ticker, &s.Period, &s.Interval, &s.Source, &trigger, &s.Records,
			&s.LastClose, &s.ReferenceClose, &s.PriceChange, &s.PercentChange,
			&s.PeriodHigh, &s.PeriodLow, &s.TotalVolume); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.RunID = runID.String
		s.Trigger = Trigger(trigger)
		s.RecordedAt = time.UnixMilli(ts).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
