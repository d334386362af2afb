// Package metrics exposes pipeline outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/word-ntfy/pkg/notification"
)

// Metrics holds the word-ntfy collectors. Each instance owns its registry so
// several can coexist in one process.
//
// Metrics:
//   - wordntfy_events_total{outcome,reason} - message events by decision
//   - wordntfy_scan_duration_seconds - time spent scanning message content
//   - wordntfy_deliveries_total{result} - sink deliveries by result
//   - wordntfy_cache_entries - messages remembered by the notification cache
type Metrics struct {
	registry *prometheus.Registry

	EventsTotal     *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	DeliveriesTotal *prometheus.CounterVec
}

// New creates and registers the collectors. cacheLen may be nil.
func New(cacheLen func() int) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordntfy_events_total",
				Help: "Total number of message events processed",
			},
			[]string{"outcome", "reason"}, // "notified" or "suppressed"
		),
		ScanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordntfy_scan_duration_seconds",
				Help:    "Duration of trigger scans in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
			},
		),
		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordntfy_deliveries_total",
				Help: "Total number of notifications handed to the sink",
			},
			[]string{"result"}, // "ok" or "error"
		),
	}

	if cacheLen != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "wordntfy_cache_entries",
				Help: "Number of messages in the notification cache",
			},
			func() float64 { return float64(cacheLen()) },
		)
	}

	return m
}

// RecordDecision counts one processed event
func (m *Metrics) RecordDecision(notified bool, reason string) {
	outcome := "suppressed"
	if notified {
		outcome = "notified"
	}
	m.EventsTotal.WithLabelValues(outcome, reason).Inc()
}

// ObserveScan records how long a trigger scan took
func (m *Metrics) ObserveScan(d time.Duration) {
	m.ScanDuration.Observe(d.Seconds())
}

// Registry returns the registry backing these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps a notifier so every delivery is counted
func (m *Metrics) Instrument(next notification.Notifier) notification.Notifier {
	return notification.NotifierFunc(func(p notification.Payload) error {
		err := next.Send(p)
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.DeliveriesTotal.WithLabelValues(result).Inc()
		return err
	})
}
