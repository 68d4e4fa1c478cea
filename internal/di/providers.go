package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockScope/internal/api"
	"StockScope/internal/app"
	"StockScope/internal/cache"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logger"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
	"StockScope/internal/scheduler"

	"github.com/google/wire"
)

// ProviderSet contains every provider needed to build an *app.App.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideLocation,
	ProvideFetcher,
	ProvideCollector,
	ProvideCache,
	ProvideRecorder,
	ProvideNotifier,
	ProvideScheduler,
	ProvideHandler,
	ProvideServer,
	ProvideApp,
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log.With(logger.String("service", "stockscope")), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideLocation loads the normalization timezone.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.DataSource.Timezone, err)
	}
	return loc, nil
}

// ProvideFetcher selects the price source by data_source.provider.
func ProvideFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(ds.BaseURL, cfg.Proxy, ds.Timeout), nil
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}

// ProvideCollector creates the fetch and compute pipeline.
func ProvideCollector(f collector.Fetcher, loc *time.Location, log *logger.Logger, m *metrics.Recorder) *collector.Collector {
	log.Info("data source selected", logger.String("source", f.Name()), logger.String("timezone", loc.String()))
	return collector.NewCollector(f, loc, log, m)
}

// ProvideCache selects the dashboard response cache. The "none" backend
// returns a nil cache, which disables caching.
func ProvideCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.BytesCache, func(), error) {
	switch cfg.Cache.Backend {
	case "none":
		return nil, func() {}, nil
	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(pingCtx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		log.Info("redis cache connected", logger.String("addr", cfg.Cache.RedisAddr))
		return rc, func() {
			if err := rc.Close(); err != nil {
				log.Warn("close redis cache", logger.Error(err))
			}
		}, nil
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL), func() {}, nil
	}
}

// ProvideRecorder opens the SQLite snapshot store, falling back to a no-op
// recorder when the path is empty or the database cannot be opened.
func ProvideRecorder(cfg *config.Config, log *logger.Logger) (recorder.Recorder, func()) {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder(), func() {}
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn("init sqlite recorder failed, using noop", logger.Error(err))
		return recorder.NewNoopRecorder(), func() {}
	}
	return sr, func() {
		if err := sr.Close(); err != nil {
			log.Warn("close sqlite recorder", logger.Error(err))
		}
	}
}

// ProvideNotifier returns nil when Telegram is not configured.
func ProvideNotifier(cfg *config.Config, log *logger.Logger) *notifier.TelegramNotifier {
	if !cfg.TelegramEnabled() {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
}

// ProvideScheduler creates the watchlist scheduler using the dashboard defaults
// as the template request.
func ProvideScheduler(ctx context.Context, cfg *config.Config, col *collector.Collector, tn *notifier.TelegramNotifier, rec recorder.Recorder, log *logger.Logger) (*scheduler.Scheduler, error) {
	tmpl, err := templateRequest(cfg)
	if err != nil {
		return nil, err
	}
	var sender scheduler.Sender
	if tn != nil {
		sender = tn
	}
	return scheduler.NewScheduler(ctx, col, sender, rec, cfg.Schedule.Watchlist, tmpl, log), nil
}

func templateRequest(cfg *config.Config) (model.Request, error) {
	specs, err := model.ParseWindowSpecs(cfg.Dashboard.Indicators)
	if err != nil {
		return model.Request{}, fmt.Errorf("dashboard indicators: %w", err)
	}
	return model.Request{
		Period:     model.Period(cfg.Dashboard.DefaultPeriod),
		Chart:      model.ChartKind(cfg.Dashboard.DefaultChart),
		Indicators: specs,
	}, nil
}

// ProvideHandler creates the dashboard API handler.
func ProvideHandler(cfg *config.Config, col *collector.Collector, c cache.BytesCache, rec recorder.Recorder, log *logger.Logger, m *metrics.Recorder) *api.DashboardHandler {
	d := cfg.Dashboard
	defs := api.Defaults{
		Ticker:     strings.ToUpper(d.DefaultTicker),
		Period:     model.Period(d.DefaultPeriod),
		Chart:      model.ChartKind(d.DefaultChart),
		Indicators: d.Indicators,
	}
	return api.NewDashboardHandler(col, c, cfg.Cache.TTL, rec, d.Tickers, defs, log, m)
}

// ProvideServer creates the Echo HTTP server.
func ProvideServer(cfg *config.Config, h *api.DashboardHandler, log *logger.Logger, m *metrics.Recorder) *api.Server {
	opts := []api.ServerOption{
		api.WithPort(cfg.Server.Port),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	}
	if !cfg.RateLimit.Disabled {
		opts = append(opts, api.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	return api.NewServer(h, log, m, opts...)
}

// ProvideApp assembles the application.
func ProvideApp(cfg *config.Config, srv *api.Server, sched *scheduler.Scheduler, tn *notifier.TelegramNotifier, log *logger.Logger) *app.App {
	return app.New(cfg, srv, sched, tn, log)
}
