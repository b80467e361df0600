package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	KindHistory    = "history"
	KindLatest     = "latest"
	KindCurrencies = "currencies"

	LookupHit  = "hit"
	LookupMiss = "miss"
	LookupBust = "bust"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RangeRequestsTotal    prometheus.Counter
	LatestRequestsTotal   prometheus.Counter
	CurrencyRequestsTotal prometheus.Counter

	CacheLookupsTotal *prometheus.CounterVec
	CacheWritesTotal  *prometheus.CounterVec

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	SameCurrencySynthesizedTotal prometheus.Counter
}

// NewMetrics registers every collector on reg. Pass prometheus.DefaultRegisterer in main
// and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RangeRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_range_requests_total",
				Help: "Total number of date-range rate requests",
			},
		),

		LatestRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_latest_requests_total",
				Help: "Total number of latest rate requests",
			},
		),

		CurrencyRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_list_requests_total",
				Help: "Total number of currency list requests",
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by entry kind and result (hit, miss, bust)",
			},
			[]string{"kind", "result"},
		),

		CacheWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_writes_total",
				Help: "Cache writes by entry kind",
			},
			[]string{"kind"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Requests sent to the remote rate service",
			},
			[]string{"path", "outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Remote rate service latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),

		SameCurrencySynthesizedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "samecurrency_synthesized_total",
				Help: "Series built locally because base and target are the same currency",
			},
		),
	}
}

// The helpers below accept a nil receiver so that components can run without metrics.

func (m *Metrics) CacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) CacheWrite(kind string) {
	if m == nil {
		return
	}
	m.CacheWritesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Upstream(path, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(path, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(path).Observe(took.Seconds())
}

func (m *Metrics) SameCurrency() {
	if m == nil {
		return
	}
	m.SameCurrencySynthesizedTotal.Inc()
}
