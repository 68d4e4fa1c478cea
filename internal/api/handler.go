package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"StockScope/internal/cache"
	"StockScope/internal/collector"
	"StockScope/internal/logger"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/recorder"

	"github.com/guregu/null/v5"
	"github.com/labstack/echo/v4"
)

// Pipeline builds one dashboard. *collector.Collector satisfies it.
type Pipeline interface {
	Collect(ctx context.Context, req model.Request) (*model.Dashboard, error)
}

// Defaults are applied to dashboard queries that omit a parameter.
type Defaults struct {
	Ticker     string
	Period     model.Period
	Chart      model.ChartKind
	Indicators []string
}

// DashboardHandler serves dashboards, ticker lists and snapshot history.
type DashboardHandler struct {
	Pipeline Pipeline
	Cache    cache.BytesCache // nil disables response caching
	CacheTTL time.Duration
	Recorder recorder.Recorder
	Tickers  []string
	Defaults Defaults

	log     *logger.Logger
	metrics *metrics.Recorder
}

// NewDashboardHandler creates the API handler.
func NewDashboardHandler(p Pipeline, c cache.BytesCache, ttl time.Duration, rec recorder.Recorder, tickers []string, defs Defaults, log *logger.Logger, m *metrics.Recorder) *DashboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{
		Pipeline: p,
		Cache:    c,
		CacheTTL: ttl,
		Recorder: rec,
		Tickers:  tickers,
		Defaults: defs,
		log:      log.With(logger.String("component", "api")),
		metrics:  m,
	}
}

// RegisterRoutes mounts the API on e.
func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/tickers", h.ListTickers)
	g.GET("/history/:ticker", h.History)
	g.GET("/health", h.Health, noCache)
}

// DashboardQuery is the query string of GET /api/dashboard.
type DashboardQuery struct {
	Ticker      string `query:"ticker" validate:"omitempty,ticker"`
	Period      string `query:"period" validate:"omitempty,oneof=1d 1wk 1mo 1y max"`
	Interval    string `query:"interval" validate:"omitempty,oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
	Chart       string `query:"chart" validate:"omitempty,oneof=line candlestick"`
	Indicators  string `query:"indicators" validate:"max=200"`
	Overlays    string `query:"overlays" validate:"max=200"`
	Title       string `query:"title" validate:"max=200"`
	RangeSlider string `query:"rangeslider" validate:"omitempty,oneof=true false"`
	Width       int    `query:"width" validate:"gte=0,lte=4000"`
	Height      int    `query:"height" validate:"gte=0,lte=4000"`
}

func splitParam(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toRequest turns a validated query into a pipeline request.
func (h *DashboardHandler) toRequest(c echo.Context, q *DashboardQuery) (model.Request, error) {
	req := model.Request{
		Ticker:   q.Ticker,
		Period:   model.Period(q.Period),
		Interval: q.Interval,
		Chart:    model.ChartKind(q.Chart),
		Display: model.DisplayOptions{
			Title:  q.Title,
			Width:  q.Width,
			Height: q.Height,
		},
	}
	if req.Ticker == "" {
		req.Ticker = h.Defaults.Ticker
	}
	if req.Period == "" {
		req.Period = h.Defaults.Period
	}
	if req.Chart == "" {
		req.Chart = h.Defaults.Chart
	}
	if q.RangeSlider != "" {
		req.Display.RangeSlider = null.BoolFrom(q.RangeSlider == "true")
	}

	names := h.Defaults.Indicators
	if c.QueryParams().Has("indicators") {
		names = splitParam(q.Indicators)
	}
	windows, err := model.ParseWindowSpecs(names)
	if err != nil {
		return req, err
	}
	req.Indicators = windows

	if c.QueryParams().Has("overlays") {
		req.Overlays = splitParam(q.Overlays)
		if req.Overlays == nil {
			req.Overlays = []string{}
		}
	}
	return collector.Prepare(req)
}

// Dashboard runs the pipeline for the query, serving cached responses when available.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	var q DashboardQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	req, err := h.toRequest(c, &q)
	if err != nil {
		return AppErrorResponse(c, fromPipelineError(err))
	}
	if req.Ticker == "" {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_REQUIRED", Field: "ticker", Message: "ticker is required"}})
	}

	ctx := c.Request().Context()
	key := cache.DashboardKey(req)
	if body, ok := h.cached(ctx, key); ok {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSONBlob(http.StatusOK, body)
	}

	d, err := h.Pipeline.Collect(ctx, req)
	if err != nil {
		appErr := fromPipelineError(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.log.Error("dashboard failed", logger.String("ticker", req.Ticker), logger.Error(err))
			h.metrics.RecordError("dashboard")
		}
		return AppErrorResponse(c, appErr)
	}

	body, err := json.Marshal(envelope(http.StatusOK, d))
	if err != nil {
		h.log.Error("encode dashboard failed", logger.Error(err))
		return InternalServerErrorResponse(c)
	}
	if h.Cache != nil {
		if err := h.Cache.SetBytes(ctx, key, body, h.CacheTTL); err != nil {
			h.log.Warn("cache set failed", logger.Error(err))
		}
	}
	if h.Recorder != nil {
		if err := h.Recorder.RecordSnapshot(ctx, recorder.NewSnapshot(d, recorder.TriggerAPI, "")); err != nil {
			h.log.Warn("record snapshot failed", logger.Error(err))
		}
	}

	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, body)
}

func (h *DashboardHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	body, ok, err := h.Cache.GetBytes(ctx, key)
	if err != nil {
		h.log.Warn("cache get failed", logger.Error(err))
		return nil, false
	}
	h.metrics.ObserveCache(ok)
	return body, ok
}

// TickerList describes the selectable dashboard options.
type TickerList struct {
	Tickers    []string          `json:"tickers"`
	Periods    []model.Period    `json:"periods"`
	Charts     []model.ChartKind `json:"charts"`
	Indicators []string          `json:"indicators"`
}

// ListTickers returns the configured tickers and options.
func (h *DashboardHandler) ListTickers(c echo.Context) error {
	return SuccessResponse(c, TickerList{
		Tickers:    h.Tickers,
		Periods:    model.Periods,
		Charts:     []model.ChartKind{model.ChartLine, model.ChartCandlestick},
		Indicators: h.Defaults.Indicators,
	})
}

// HistoryQuery is the request of GET /api/history/:ticker.
type HistoryQuery struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

// History returns recorded metric snapshots for a ticker, newest first.
func (h *DashboardHandler) History(c echo.Context) error {
	var q HistoryQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	if h.Recorder == nil {
		return ListResponse(c, []recorder.Snapshot{}, 0)
	}
	snaps, err := h.Recorder.RecentSnapshots(c.Request().Context(), q.Ticker, q.Limit)
	if err != nil {
		h.log.Error("history query failed", logger.String("ticker", q.Ticker), logger.Error(err))
		return AppErrorResponse(c, InternalError("history unavailable").WithError(err))
	}
	return ListResponse(c, snaps, len(snaps))
}

// Health reports liveness.
func (h *DashboardHandler) Health(c echo.Context) error {
	return SuccessResponse(c, map[string]string{"status": "ok"})
}
