package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Settlement outcome: credited | skipped | failed
	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Charge settlement attempts by outcome",
		},
		[]string{"result"},
	)

	LedgerEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Ledger entries written",
		},
		[]string{"kind"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notification dispatch attempts",
		},
		[]string{"type", "result"},
	)

	// source: order | default | none
	BannerSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banner_selections_total",
			Help: "Banner selections by placement and source",
		},
		[]string{"place", "source"},
	)

	HTTPPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_handler_panics_total",
			Help: "Recovered HTTP handler panics",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency)
		prometheus.MustRegister(SettlementsTotal)
		prometheus.MustRegister(LedgerEntriesTotal)
		prometheus.MustRegister(NotificationsTotal)
		prometheus.MustRegister(BannerSelections)
		prometheus.MustRegister(HTTPPanicsTotal)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
