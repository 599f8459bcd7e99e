// Package metrics defines the Prometheus collectors of the update pass
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

const namespace = "gpp_indexer"

// Recorder records the outcome of update passes
//
//go:generate mockgen -source=metrics.go -destination=../mocks/metrics.go -package=mocks -mock_names=Recorder=MockRecorder
type Recorder interface {
	// RecordRun records a finished pass. summary may be nil when the pass failed early.
	RecordRun(summary *domain.RunSummary, duration time.Duration, err error)

	// Push sends the current values to the configured Pushgateway, if any
	Push(ctx context.Context) error

	// Handler serves the registry for scraping
	Handler() http.Handler
}

// Config holds metrics configuration
type Config struct {
	// PushgatewayURL enables pushing after each run when set
	PushgatewayURL string
	// Job is the Pushgateway job name
	Job string
}

// Metrics holds all Prometheus collectors of the indexer on a private registry
type Metrics struct {
	cfg      Config
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	UnitsProcessed     prometheus.Counter
	UnitsSkipped       prometheus.Counter
	RowsReduced        prometheus.Counter
	Regions            prometheus.Gauge
	Watermark          prometheus.Gauge
	LastSuccessSeconds prometheus.Gauge
}

// New creates and registers all collectors
func New(cfg Config) *Metrics {
	if cfg.Job == "" {
		cfg.Job = namespace
	}

	m := &Metrics{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Update passes by result (success, not_due, in_progress, error).",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of update passes in seconds.",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
		UnitsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_processed_total",
				Help:      "Source units reduced and merged.",
			},
		),
		UnitsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_skipped_total",
				Help:      "Source units skipped because they were already processed.",
			},
		),
		RowsReduced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_reduced_total",
				Help:      "Region rows produced by reductions.",
			},
		),
		Regions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "regions",
				Help:      "Regions in the wide table after the last change.",
			},
		),
		Watermark: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watermark_timestamp_seconds",
				Help:      "Watermark committed by the last successful pass.",
			},
		),
		LastSuccessSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Completion time of the last successful pass.",
			},
		),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.UnitsProcessed,
		m.UnitsSkipped,
		m.RowsReduced,
		m.Regions,
		m.Watermark,
		m.LastSuccessSeconds,
	)

	return m
}

// Result classifies a pass outcome for the runs_total label
func Result(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotDue):
		return "not_due"
	case errors.Is(err, domain.ErrRunInProgress):
		return "in_progress"
	default:
		return "error"
	}
}

func (m *Metrics) RecordRun(summary *domain.RunSummary, duration time.Duration, err error) {
	m.RunsTotal.WithLabelValues(Result(err)).Inc()
	m.RunDuration.Observe(duration.Seconds())

	if err != nil || summary == nil {
		return
	}

	m.UnitsProcessed.Add(float64(summary.ProcessedUnits))
	m.UnitsSkipped.Add(float64(summary.SkippedUnits))
	m.RowsReduced.Add(float64(summary.Rows))
	if summary.TableChanged {
		m.Regions.Set(float64(summary.Regions))
	}
	m.Watermark.Set(float64(summary.Watermark.Unix()))
	m.LastSuccessSeconds.Set(float64(summary.FinishedAt.Unix()))
}

func (m *Metrics) Push(ctx context.Context) error {
	if m.cfg.PushgatewayURL == "" {
		return nil
	}

	if err := push.New(m.cfg.PushgatewayURL, m.cfg.Job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
