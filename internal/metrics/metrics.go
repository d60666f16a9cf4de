// Package metrics exposes Prometheus counters for a scrape run.
//
// A run is a short-lived batch job, so nothing is served over HTTP. The
// registry can be written to a node_exporter textfile at the end of the run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Summary results.
const (
	SummaryOK     = "ok"
	SummaryFailed = "failed"
	SummaryEmpty  = "empty"
)

// Recorder holds the collectors of one run.
type Recorder struct {
	registry  *prometheus.Registry
	entries   *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	summaries *prometheus.CounterVec
	uploads   *prometheus.CounterVec
	stages    *prometheus.HistogramVec
	lastRun   prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dance_events_entries_total",
				Help: "Listing entries found, by site.",
			},
			[]string{"site"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dance_events_entries_skipped_total",
				Help: "Listing entries skipped, by site and reason.",
			},
			[]string{"site", "reason"},
		),
		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dance_events_summaries_total",
				Help: "Summaries produced, by site and result (" + SummaryOK + ", " + SummaryFailed + ", " + SummaryEmpty + ").",
			},
			[]string{"site", "result"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dance_events_uploads_total",
				Help: "Upload attempts, by site and result (ok, failed).",
			},
			[]string{"site", "result"},
		),
		stages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dance_events_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dance_events_last_run_timestamp_seconds",
				Help: "Unix time the last run finished.",
			},
		),
	}

	r.registry.MustRegister(r.entries, r.skipped, r.summaries, r.uploads, r.stages, r.lastRun)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) EntryFound(site string) {
	r.entries.WithLabelValues(site).Inc()
}

func (r *Recorder) EntrySkipped(site, reason string) {
	r.skipped.WithLabelValues(site, reason).Inc()
}

func (r *Recorder) Summary(site, result string) {
	r.summaries.WithLabelValues(site, result).Inc()
}

func (r *Recorder) Upload(site string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.uploads.WithLabelValues(site, result).Inc()
}

// ObserveStage records how long a stage (listing, detail, summarize, upload) took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// Finish stamps the run completion time.
func (r *Recorder) Finish(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
