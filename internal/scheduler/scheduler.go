package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockScope/internal/logger"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Pipeline builds one dashboard. *collector.Collector satisfies it.
type Pipeline interface {
	Collect(ctx context.Context, req model.Request) (*model.Dashboard, error)
}

// Sender delivers a message with retries. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the watchlist on a cron schedule, sends digests and
// answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Pipeline  Pipeline
	Notifier  Sender // nil disables outgoing messages
	Recorder  recorder.Recorder
	Watchlist []string
	Template  model.Request // period, interval, chart and indicators for scheduled runs
	Ctx       context.Context // cancelled by Stop

	log     *logger.Logger
	cancel  context.CancelFunc
	life    sync.Mutex // guards stopped and running.Add
	stopped bool
	running sync.WaitGroup
	mu      sync.RWMutex
	latest  map[string]*model.Metrics
	errs    map[string]error
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p Pipeline, sender Sender, rec recorder.Recorder, watchlist []string, tmpl model.Request, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Pipeline:  p,
		Notifier:  sender,
		Recorder:  rec,
		Watchlist: watchlist,
		Template:  tmpl,
		Ctx:       ctx,
		log:       log.With(logger.String("component", "scheduler")),
		cancel:    cancel,
		latest:    make(map[string]*model.Metrics),
		errs:      make(map[string]error),
	}
}

// RegisterAll registers the refresh and digest tasks. An empty spec skips that task.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if digestCron != "" {
		if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
			return fmt.Errorf("register digest task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.Cron.Entries())))
}

// Stop cancels in-flight refreshes, stops the cron scheduler and waits for
// running jobs, including ones started by RunRefreshNow.
func (s *Scheduler) Stop() {
	s.life.Lock()
	s.stopped = true
	s.cancel()
	s.life.Unlock()
	<-s.Cron.Stop().Done()
	s.running.Wait()
	s.log.Info("scheduler stopped")
}

// RunRefreshNow executes the watchlist refresh immediately.
func (s *Scheduler) RunRefreshNow() *recorder.RefreshRun {
	return s.refresh()
}

func (s *Scheduler) refreshTask() { s.refresh() }

func (s *Scheduler) refresh() *recorder.RefreshRun {
	run := &recorder.RefreshRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}

	s.life.Lock()
	if s.stopped {
		s.life.Unlock()
		run.FinishedAt = run.StartedAt
		run.Note = "scheduler stopped"
		return run
	}
	s.running.Add(1)
	s.life.Unlock()
	defer s.running.Done()

	log := s.log.With(logger.String("run_id", run.ID))
	log.Info("running watchlist refresh", logger.Strings("tickers", s.Watchlist))

	var failed []string
	for i, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			log.Warn("refresh cancelled", logger.Int("skipped", len(s.Watchlist)-i))
			failed = append(failed, s.Watchlist[i:]...)
			run.Failed += len(s.Watchlist) - i
			break
		}
		req := s.Template
		req.Ticker = ticker
		d, err := s.Pipeline.Collect(s.Ctx, req)
		s.remember(ticker, d, err)
		if err != nil {
			log.Warn("refresh failed", logger.String("ticker", ticker), logger.Error(err))
			failed = append(failed, ticker)
			run.Failed++
			continue
		}
		run.Succeeded++
		if err := s.Recorder.RecordSnapshot(s.Ctx, recorder.NewSnapshot(d, recorder.TriggerRefresh, run.ID)); err != nil {
			log.Error("record snapshot failed", logger.String("ticker", ticker), logger.Error(err))
		}
	}

	run.FinishedAt = time.Now().UTC()
	if len(failed) > 0 {
		run.Note = "failed: " + strings.Join(failed, ",")
	}
	// the run is recorded even when the refresh was cut short by Stop
	if err := s.Recorder.RecordRun(context.WithoutCancel(s.Ctx), run); err != nil {
		log.Error("record run failed", logger.Error(err))
	}
	log.Info("watchlist refresh done",
		logger.Int("succeeded", run.Succeeded),
		logger.Int("failed", run.Failed),
		logger.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return run
}

func (s *Scheduler) remember(ticker string, d *model.Dashboard, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errs[ticker] = err
		return
	}
	delete(s.errs, ticker)
	s.latest[ticker] = d.Metrics
}

// Digest formats the latest refreshed metrics of every watchlist ticker.
func (s *Scheduler) Digest(at time.Time) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]notifier.DigestLine, 0, len(s.Watchlist))
	for _, ticker := range s.Watchlist {
		lines = append(lines, notifier.DigestLine{Ticker: ticker, Metrics: s.latest[ticker], Err: s.errs[ticker]})
	}
	return notifier.FormatDigest(lines, at)
}

func (s *Scheduler) digestTask() {
	s.log.Info("sending digest")
	s.trySend(s.Digest(time.Now()))
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch strings.ToLower(fields[0]) {
	case "/quote":
		if len(fields) < 2 {
			return "Usage: /quote &lt;TICKER&gt; [period]"
		}
		req := s.Template
		req.Ticker = fields[1]
		if len(fields) > 2 {
			req.Period = model.Period(strings.ToLower(fields[2]))
			req.Interval = ""
		}
		return s.quote(ctx, req)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Watchlist)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) quote(ctx context.Context, req model.Request) string {
	d, err := s.Pipeline.Collect(ctx, req)
	switch {
	case errors.Is(err, model.ErrInvalidPeriod):
		return "Unsupported period. Use one of: 1d, 1wk, 1mo, 1y, max"
	case errors.Is(err, model.ErrNoData):
		return fmt.Sprintf("No data available for %s", strings.ToUpper(req.Ticker))
	case err != nil:
		s.log.Error("quote failed", logger.String("ticker", req.Ticker), logger.Error(err))
		return "Quote failed, please try again later."
	}
	if err := s.Recorder.RecordSnapshot(ctx, recorder.NewSnapshot(d, recorder.TriggerCommand, "")); err != nil {
		s.log.Error("record snapshot failed", logger.Error(err))
	}
	return notifier.FormatQuote(d)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification failed", logger.Error(err))
	}
}
