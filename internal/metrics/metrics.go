package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors the ledger exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	Postings        *prometheus.CounterVec
	StockFloorHits  prometheus.Counter
	StatisticsRuns  *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Postings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_postings_total",
				Help: "Ledger write operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		StockFloorHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_stock_floor_hits_total",
			Help: "Stock reservations floored at zero after a failed conditional decrement",
		}),
		StatisticsRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_statistics_total",
				Help: "Statistics computations by cache outcome",
			},
			[]string{"cache"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
	m.registry.MustRegister(m.Postings, m.StockFloorHits, m.StatisticsRuns, m.RequestsTotal, m.RequestDuration)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePosting(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Postings.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveFloorHit() {
	if m == nil {
		return
	}
	m.StockFloorHits.Inc()
}

func (m *Metrics) ObserveStatistics(cacheHit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.StatisticsRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
