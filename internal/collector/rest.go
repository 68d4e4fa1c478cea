package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"StockScope/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v5"
)

// barTimeLayout is the wall clock format of the bars service. Timestamps carry no zone.
const barTimeLayout = "2006-01-02 15:04:05"

// RESTFetcher implements Fetcher against a generic bars REST service.
type RESTFetcher struct {
	client *resty.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &RESTFetcher{client: client}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of the bars service. Missing prices decode as invalid.
type restBar struct {
	Datetime string     `json:"datetime"`
	Open     null.Float `json:"open"`
	High     null.Float `json:"high"`
	Low      null.Float `json:"low"`
	Close    null.Float `json:"close"`
	Volume   null.Float `json:"volume"`
}

// usable reports whether the bar has every price and a non-negative volume.
func (b restBar) usable() bool {
	return b.Open.Valid && b.High.Valid && b.Low.Valid && b.Close.Valid && b.Volume.Float64 >= 0
}

// statusError is a non-success response from the bars service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch bars: status %d, body: %s", e.code, e.body)
}

// FetchBars implements Fetcher. When the service rejects a weekly request,
// daily bars are fetched and aggregated. Transport failures and cancellation
// are returned as is.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, period model.Period, interval string) (*model.RawSeries, error) {
	bars, err := f.fetchBars(ctx, symbol, period, interval)
	var se *statusError
	if err != nil && interval == "1wk" && errors.As(err, &se) {
		daily, dailyErr := f.fetchBars(ctx, symbol, period, "1d")
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		bars, err = aggregateDailyToWeekly(daily), nil
	}
	if err != nil {
		return nil, err
	}
	return &model.RawSeries{
		Symbol:    symbol,
		Period:    period,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, period model.Period, interval string) ([]model.OHLCV, error) {
	var rows []restBar
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"period":   string(period),
			"interval": interval,
		}).
		SetResult(&rows).
		Get("/api/v1/bars")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &statusError{code: resp.StatusCode(), body: resp.String()}
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, row := range rows {
		if !row.usable() {
			continue // null prices or negative volume
		}
		ts, err := time.Parse(barTimeLayout, row.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse bar time %q: %w", row.Datetime, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   row.Open.Float64,
			High:   row.High.Float64,
			Low:    row.Low.Float64,
			Close:  row.Close.Float64,
			Volume: row.Volume.Float64,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// aggregateDailyToWeekly folds daily bars into ISO-week bars.
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	var weekly []model.OHLCV
	for _, d := range daily {
		if n := len(weekly); n > 0 && sameISOWeek(weekly[n-1].Time, d.Time) {
			w := &weekly[n-1]
			w.High = max(w.High, d.High)
			w.Low = min(w.Low, d.Low)
			w.Close = d.Close
			w.Volume += d.Volume
			continue
		}
		weekly = append(weekly, d)
	}
	return weekly
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
