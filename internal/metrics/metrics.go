// Package metrics provides Prometheus metrics for report runs.
//
// A batch job exits before any scrape, so each run records into its own
// registry and pushes it to a Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	reg *prometheus.Registry

	// RunsTotal counts finished runs by status.
	RunsTotal *prometheus.CounterVec
	// ErrorsTotal counts failed runs by error kind.
	ErrorsTotal *prometheus.CounterVec
	// RecordsRead counts token records fetched from the source.
	RecordsRead prometheus.Counter
	// Sections is the number of sections in the last document.
	Sections prometheus.Gauge
	// RunDuration measures wall time of a run.
	RunDuration prometheus.Histogram
	// LastSuccess is the unix time of the last successful run.
	LastSuccess prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lemma_report",
				Name:      "runs_total",
				Help:      "Total number of report runs",
			},
			[]string{"status"},
		),
		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lemma_report",
				Name:      "errors_total",
				Help:      "Total number of failed runs by error kind",
			},
			[]string{"kind"},
		),
		RecordsRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: "lemma_report",
			Name:      "records_read_total",
			Help:      "Token records read from the source",
		}),
		Sections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lemma_report",
			Name:      "sections",
			Help:      "Sections in the last assembled document",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lemma_report",
			Name:      "run_duration_seconds",
			Help:      "Duration of report runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "lemma_report",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// Registry exposes the underlying registry, e.g. for tests or a handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// RecordSuccess records a completed run. Nil receivers are ignored.
func (m *Metrics) RecordSuccess(records int64, sections int, duration time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(StatusSuccess).Inc()
	m.RecordsRead.Add(float64(records))
	m.Sections.Set(float64(sections))
	m.RunDuration.Observe(duration.Seconds())
	m.LastSuccess.Set(float64(at.Unix()))
}

// RecordFailure records a failed run with its error kind.
func (m *Metrics) RecordFailure(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(StatusFailure).Inc()
	m.ErrorsTotal.WithLabelValues(kind).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// Push sends the registry to the Pushgateway at url under job, replacing
// the previous push of the same job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
