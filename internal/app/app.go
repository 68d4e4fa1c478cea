// Package app runs the HTTP API, the watchlist scheduler and the Telegram bot
// as one process.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockScope/internal/api"
	"StockScope/internal/config"
	"StockScope/internal/logger"
	"StockScope/internal/notifier"
	"StockScope/internal/scheduler"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg       *config.Config
	server    *api.Server
	scheduler *scheduler.Scheduler
	bot       *notifier.TelegramNotifier // nil when Telegram is not configured
	log       *logger.Logger
}

// New creates an App from its wired components.
func New(cfg *config.Config, server *api.Server, sched *scheduler.Scheduler, bot *notifier.TelegramNotifier, log *logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{cfg: cfg, server: server, scheduler: sched, bot: bot, log: log}
}

// Run starts every component and blocks until ctx is done or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.scheduler.RegisterAll(a.cfg.Schedule.RefreshCron, a.cfg.Schedule.DigestCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	a.scheduler.Start()

	if a.bot != nil {
		go a.bot.StartPolling(ctx, a.scheduler.HandleCommand)
		a.log.Info("telegram polling started")
	} else {
		a.log.Info("telegram not configured, bot and digests disabled")
	}

	if a.cfg.Schedule.RunOnStart {
		a.log.Info("run_on_start enabled, refreshing watchlist now")
		go a.scheduler.RunRefreshNow()
	}

	if err := a.server.Start(); err != nil {
		a.scheduler.Stop()
		return fmt.Errorf("start http server: %w", err)
	}
	a.log.Info("stockscope is running",
		logger.Int("port", a.cfg.Server.Port),
		logger.Strings("watchlist", a.cfg.Schedule.Watchlist),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		a.log.Info("context cancelled, stopping")
	}
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var firstErr error
	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("http server shutdown failed", logger.Error(err))
		firstErr = err
	}
	a.scheduler.Stop()
	a.log.Info("stockscope stopped")
	return firstErr
}
