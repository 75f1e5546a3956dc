// Package metrics exposes Prometheus metrics for window extraction runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "metrics")

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	InstrumentsTotal *prometheus.CounterVec // labels: status=ok|failed
	FailuresTotal    *prometheus.CounterVec // labels: kind
	PredictedTotal   prometheus.Counter
	ExtractDur       prometheus.Histogram
	RunDur           prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		InstrumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwindow_instruments_total",
			Help: "Instruments processed, by outcome",
		}, []string{"status"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwindow_failures_total",
			Help: "Instrument failures, by error kind",
		}, []string{"kind"}),
		PredictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwindow_predicted_values_total",
			Help: "Total predicted values appended to windows",
		}),
		ExtractDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockwindow_extract_duration_seconds",
			Help:    "Time spent scanning one instrument file for its window",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		RunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockwindow_run_duration_seconds",
			Help:    "Duration of a complete run over all instruments",
			Buckets: prometheus.DefBuckets,
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockwindow_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}

	m.Registry.MustRegister(
		m.InstrumentsTotal,
		m.FailuresTotal,
		m.PredictedTotal,
		m.ExtractDur,
		m.RunDur,
		m.LastRunTimestamp,
	)
	return m
}

// ObserveExtract records the duration of one extraction.
func (m *Metrics) ObserveExtract(d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractDur.Observe(d.Seconds())
}

// InstrumentDone records the outcome of one instrument. kind is empty on success.
func (m *Metrics) InstrumentDone(kind string, predicted int) {
	if m == nil {
		return
	}
	if kind == "" {
		m.InstrumentsTotal.WithLabelValues("ok").Inc()
		m.PredictedTotal.Add(float64(predicted))
		return
	}
	m.InstrumentsTotal.WithLabelValues("failed").Inc()
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// RunDone records a completed run.
func (m *Metrics) RunDone(d time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.RunDur.Observe(d.Seconds())
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
