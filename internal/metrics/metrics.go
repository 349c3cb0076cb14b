// Package metrics exposes Prometheus collectors for the poll relay.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/pollrelay/internal/domain"
)

// Bucket bounds reach well past the default worst case (10 attempts, 345s)
// so raised POLL_* settings still land in a finite bucket.
var (
	sequenceAttemptBuckets = []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30, 50, 100}
	sequenceSecondsBuckets = []float64{0.1, 1, 5, 10, 30, 60, 120, 240, 360, 600, 1200, 1800}
)

var (
	pollAttemptsTotal          *prometheus.CounterVec
	pollAttemptDurationSeconds prometheus.Histogram
	pollSequencesTotal         *prometheus.CounterVec
	pollSequenceAttempts       prometheus.Histogram
	pollSequenceSeconds        *prometheus.HistogramVec
	pollInFlight               prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pollAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pollrelay_attempts_total",
				Help: "Outbound poll attempts, labeled by classification.",
			},
			[]string{"classification"},
		)

		pollAttemptDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pollrelay_attempt_duration_seconds",
				Help:    "Latency of individual outbound poll attempts.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		pollSequencesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pollrelay_sequences_total",
				Help: "Finished poll sequences, labeled by outcome.",
			},
			[]string{"status"},
		)

		pollSequenceAttempts = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pollrelay_sequence_attempts",
				Help:    "Attempts spent per finished poll sequence.",
				Buckets: sequenceAttemptBuckets,
			},
		)

		pollSequenceSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pollrelay_sequence_duration_seconds",
				Help:    "Wall time of finished poll sequences, labeled by outcome.",
				Buckets: sequenceSecondsBuckets,
			},
			[]string{"status"},
		)

		pollInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pollrelay_sequences_in_flight",
				Help: "Poll sequences currently running.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 5, 15, 30, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// PollRecorder feeds executor events into the poll collectors.
type PollRecorder struct{}

// NewPollRecorder initializes the collectors and returns a recorder.
func NewPollRecorder() *PollRecorder {
	Init()
	return &PollRecorder{}
}

func (PollRecorder) StartSequence() {
	pollInFlight.Inc()
}

func (PollRecorder) ObserveAttempt(class domain.Classification, latency time.Duration) {
	pollAttemptsTotal.WithLabelValues(string(class)).Inc()
	pollAttemptDurationSeconds.Observe(latency.Seconds())
}

func (PollRecorder) ObserveSequence(status domain.SequenceStatus, attempts int, elapsed time.Duration) {
	pollInFlight.Dec()
	pollSequencesTotal.WithLabelValues(string(status)).Inc()
	pollSequenceAttempts.Observe(float64(attempts))
	pollSequenceSeconds.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}
