// Package metrics records pipeline, cache and HTTP activity with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/guregu/null/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder wraps the Prometheus collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	lastClose     *prometheus.GaugeVec
	percentChange *prometheus.GaugeVec
	cacheLookups  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a recorder on its own registry, with Go and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_fetches_total",
				Help: "Total number of price fetches by source and result",
			},
			[]string{"source", "result"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockscope_fetch_duration_seconds",
				Help:    "Duration of price fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		lastClose: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockscope_last_close",
				Help: "Last close of the most recent dashboard for a ticker",
			},
			[]string{"ticker"},
		),
		percentChange: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockscope_percent_change",
				Help: "Percent change over the requested period for a ticker",
			},
			[]string{"ticker"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_cache_lookups_total",
				Help: "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockscope_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveFetch records one fetch attempt.
func (r *Recorder) ObserveFetch(source string, d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetches.WithLabelValues(source, result).Inc()
	r.fetchLatency.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveDashboard records the latest metrics of a ticker. An undefined
// percent change leaves the previous gauge value in place.
func (r *Recorder) ObserveDashboard(ticker string, lastClose float64, pct null.Float) {
	if r == nil {
		return
	}
	r.lastClose.WithLabelValues(ticker).Set(lastClose)
	if pct.Valid {
		r.percentChange.WithLabelValues(ticker).Set(pct.Float64)
	}
}

// ObserveCache records a cache hit or miss.
func (r *Recorder) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}
