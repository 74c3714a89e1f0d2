// Package metrics exposes prometheus counters for scanning, lookups and
// record writes on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/bookscanner/internal/scan"
)

const namespace = "bookscanner"

// Metrics implements scan.Recorder and counts deletions and sessions.
type Metrics struct {
	registry *prometheus.Registry

	Detections    *prometheus.CounterVec
	Lookups       *prometheus.CounterVec
	LookupSeconds prometheus.Histogram
	Saved         *prometheus.CounterVec
	Deleted       prometheus.Counter
	OpenSessions  prometheus.Gauge
}

var _ scan.Recorder = (*Metrics)(nil)

// New registers all metrics, plus Go runtime and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Detections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_detections_total",
			Help:      "Barcode detections by outcome (accepted, busy, duplicate, closed)",
		}, []string{"outcome"}),
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Completed lookups by result (found, not_found, error, discarded)",
		}, []string{"result"}),
		LookupSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time taken to resolve an identifier",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		Saved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Records saved by mode (single, batch)",
		}, []string{"mode"}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Records deleted",
		}),
		OpenSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_sessions",
			Help:      "Open scan sessions",
		}),
	}
}

func (m *Metrics) ScanDetected(outcome string) { m.Detections.WithLabelValues(outcome).Inc() }

func (m *Metrics) LookupCompleted(result string, elapsed time.Duration) {
	m.Lookups.WithLabelValues(result).Inc()
	m.LookupSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordsSaved(mode string, n int) {
	m.Saved.WithLabelValues(mode).Add(float64(n))
}

// IncRecordsDeleted adds n deleted records.
func (m *Metrics) IncRecordsDeleted(n int) { m.Deleted.Add(float64(n)) }

// SetSessions records the number of open sessions.
func (m *Metrics) SetSessions(n int) { m.OpenSessions.Set(float64(n)) }

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
