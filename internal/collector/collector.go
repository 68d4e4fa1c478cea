package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/calculator"
	"StockScope/internal/chart"
	"StockScope/internal/logger"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
)

// DefaultTailSize is the number of trailing records returned with a dashboard.
const DefaultTailSize = 5

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Bars  []model.OHLCV
	Zone  *time.Location // nil produces naive timestamps
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, period model.Period, interval string) (*model.RawSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if bars == nil {
		count := m.Count
		if count == 0 {
			count = 60
		}
		bars = generateMockBars(m.Price, count, intervalStep(interval))
	}
	return &model.RawSeries{
		Symbol:    symbol,
		Period:    period,
		Interval:  interval,
		Zone:      m.Zone,
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	end := time.Now().UTC().Truncate(time.Minute)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// intervalStep converts an interval such as "1m", "30m", "1d" or "1wk" to a duration.
func intervalStep(interval string) time.Duration {
	day := 24 * time.Hour
	units := []struct {
		suffix string
		unit   time.Duration
	}{{"wk", 7 * day}, {"mo", 30 * day}, {"m", time.Minute}, {"h", time.Hour}, {"d", day}}
	for _, u := range units {
		if n, err := strconv.Atoi(strings.TrimSuffix(interval, u.suffix)); err == nil && strings.HasSuffix(interval, u.suffix) && n > 0 {
			return time.Duration(n) * u.unit
		}
	}
	return day
}

// Collector runs the full dashboard pipeline for one request.
type Collector struct {
	Fetcher  Fetcher
	Location *time.Location
	TailSize int

	log     *logger.Logger
	metrics *metrics.Recorder
}

// NewCollector creates a new Collector. A nil loc normalizes to US/Eastern.
func NewCollector(fetcher Fetcher, loc *time.Location, log *logger.Logger, rec *metrics.Recorder) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		Fetcher:  fetcher,
		Location: loc,
		TailSize: DefaultTailSize,
		log:      log.With(logger.String("component", "collector")),
		metrics:  rec,
	}
}

// Prepare fills unset request fields and validates the period.
func Prepare(req model.Request) (model.Request, error) {
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Period == "" {
		req.Period = model.Period1d
	}
	if !req.Period.Valid() {
		return req, fmt.Errorf("%w: %q", model.ErrInvalidPeriod, req.Period)
	}
	if req.Interval == "" {
		req.Interval = model.DefaultInterval(req.Period)
	}
	if req.Chart == "" {
		req.Chart = model.ChartLine
	}
	if req.Overlays == nil {
		req.Overlays = req.IndicatorNames()
	}
	return req, nil
}

// Collect fetches the requested series and derives metrics, indicators and chart.
// Fetch failures and empty results are reported as model.ErrNoData.
func (c *Collector) Collect(ctx context.Context, req model.Request) (*model.Dashboard, error) {
	req, err := Prepare(req)
	if err != nil {
		return nil, err
	}
	log := c.log.With(logger.String("ticker", req.Ticker), logger.String("period", string(req.Period)))

	start := time.Now()
	raw, err := c.Fetcher.FetchBars(ctx, req.Ticker, req.Period, req.Interval)
	c.metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), err)
	if err != nil {
		log.Warn("fetch failed", logger.String("source", c.Fetcher.Name()), logger.Error(err))
		return nil, fmt.Errorf("%w: fetch %s: %w", model.ErrNoData, req.Ticker, err)
	}

	series, err := calculator.Normalize(raw, c.Location)
	if err != nil {
		log.Warn("normalize failed", logger.String("source", c.Fetcher.Name()), logger.Error(err))
		return nil, fmt.Errorf("%w: normalize %s: %w", model.ErrNoData, req.Ticker, err)
	}

	m, err := calculator.ComputeMetrics(series)
	if err != nil {
		return nil, fmt.Errorf("compute metrics: %w", err)
	}

	series, err = calculator.AddIndicators(series, req.Indicators)
	if err != nil {
		return nil, fmt.Errorf("add indicators: %w", err)
	}

	spec, err := chart.Build(series, req.Chart, req.Overlays, req.Display)
	if err != nil {
		return nil, fmt.Errorf("build chart: %w", err)
	}

	c.metrics.ObserveDashboard(req.Ticker, m.LastClose, m.PercentChange)
	log.Debug("dashboard built",
		logger.Int("records", series.Len()),
		logger.Strings("indicators", series.ColumnNames()),
		logger.Duration("elapsed", time.Since(start)),
	)

	return &model.Dashboard{
		Request:     req,
		Indicators:  series.ColumnNames(),
		Series:      series,
		Metrics:     &m,
		Chart:       spec,
		Tail:        series.Tail(c.TailSize),
		Source:      c.Fetcher.Name(),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
