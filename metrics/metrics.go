// Package metrics counts what the job lifecycle does so a run can be inspected
// after the fact. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	Uploads      *prometheus.CounterVec
	UploadBytes  prometheus.Counter
	PollTicks    *prometheus.CounterVec
	PollDuration prometheus.Histogram
	Outcomes     *prometheus.CounterVec
	Fetches      *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipsent_uploads_total",
				Help: "Uploads attempted, by result",
			},
			[]string{"result"},
		),
		UploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clipsent_upload_bytes_total",
				Help: "Video bytes accepted by the backend",
			},
		),
		PollTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipsent_poll_ticks_total",
				Help: "Status checks issued, by reported job status",
			},
			[]string{"status"},
		),
		PollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clipsent_poll_duration_seconds",
				Help:    "Time from first status check to a terminal state",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34m
			},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipsent_job_outcomes_total",
				Help: "Submissions that reached a terminal view, by phase",
			},
			[]string{"phase"},
		),
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipsent_result_fetches_total",
				Help: "Results retrievals, by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.Uploads, m.UploadBytes, m.PollTicks, m.PollDuration, m.Outcomes, m.Fetches)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveUpload(err error, bytes int64) {
	if m == nil {
		return
	}
	if err != nil {
		m.Uploads.WithLabelValues("error").Inc()
		return
	}
	m.Uploads.WithLabelValues("ok").Inc()
	m.UploadBytes.Add(float64(bytes))
}

func (m *Metrics) ObservePollTick(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "error"
	}
	m.PollTicks.WithLabelValues(status).Inc()
}

func (m *Metrics) ObservePollDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.PollDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveOutcome(phase string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(phase).Inc()
}

func (m *Metrics) ObserveFetch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Fetches.WithLabelValues("error").Inc()
		return
	}
	m.Fetches.WithLabelValues("ok").Inc()
}

// WriteTextfile dumps the current values in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics textfile: %w", err)
	}
	return nil
}
