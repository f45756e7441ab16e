// Package metrics exposes Prometheus collectors for the harvest pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordsTotal         prometheus.Counter
	candidatesTotal      prometheus.Counter
	fetchesTotal         *prometheus.CounterVec
	fetchDurationSeconds prometheus.Histogram
	rejectionsTotal      *prometheus.CounterVec
	admissionsTotal      prometheus.Counter
	activeFetches        prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "logoharvest_records_total",
			Help: "Total site records read from the source dataset.",
		})

		candidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "logoharvest_candidates_total",
			Help: "Total candidates surviving dataset reduction.",
		})

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logoharvest_fetches_total",
				Help: "Total logo fetches, labeled by outcome status.",
			},
			[]string{"status"},
		)

		fetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "logoharvest_fetch_duration_seconds",
			Help:    "Histogram of per-candidate fetch latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		})

		rejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logoharvest_rejections_total",
				Help: "Total rejected candidates, labeled by reason.",
			},
			[]string{"reason"},
		)

		admissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "logoharvest_admissions_total",
			Help: "Total logos admitted to the store.",
		})

		activeFetches = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "logoharvest_active_fetches",
			Help: "Number of fetches currently in flight.",
		})
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRecords adds to the record counter after the dataset is read.
func ObserveRecords(n int) {
	if n > 0 {
		recordsTotal.Add(float64(n))
	}
}

// ObserveCandidates adds to the candidate counter after reduction.
func ObserveCandidates(n int) {
	if n > 0 {
		candidatesTotal.Add(float64(n))
	}
}

// ObserveFetch records one completed fetch.
func ObserveFetch(status string, duration time.Duration) {
	fetchesTotal.WithLabelValues(status).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveRejection records a rejected candidate by reason.
func ObserveRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}

// ObserveAdmission records a logo admitted to the store.
func ObserveAdmission() {
	admissionsTotal.Inc()
}

// IncActiveFetches increments the in-flight fetch gauge.
func IncActiveFetches() {
	activeFetches.Inc()
}

// DecActiveFetches decrements the in-flight fetch gauge.
func DecActiveFetches() {
	activeFetches.Dec()
}
