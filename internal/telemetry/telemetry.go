// Package telemetry records run counters in a Prometheus registry and writes them
// to a node_exporter textfile.
package telemetry

import (
	"fmt"
	"time"

	"github.com/huangsam/seobench/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of one process. Each Recorder owns its registry so that
// textfiles only carry seobench series.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	issuesTotal  *prometheus.CounterVec
	rowsTotal    prometheus.Counter
	runDuration  prometheus.Histogram
	lastBlocked  prometheus.Gauge
	lastRunStamp prometheus.Gauge
}

// NewRecorder creates a Recorder with all series registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seobench_runs_total",
				Help: "Total number of benchmark runs",
			},
			[]string{"status"}, // status: ok, blocked
		),
		issuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seobench_qa_issues_total",
				Help: "Total number of QA issues recorded",
			},
			[]string{"issue_type", "severity"},
		),
		rowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "seobench_analysis_rows_total",
			Help: "Total number of analysis rows written",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seobench_run_duration_seconds",
			Help:    "Benchmark run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		}),
		lastBlocked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seobench_last_run_blocked",
			Help: "1 when the last run was blocked by validation errors",
		}),
		lastRunStamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seobench_last_run_timestamp_seconds",
			Help: "Start of the last run (unix timestamp)",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(result schema.RunResult, issues []schema.QAIssue, started time.Time, duration time.Duration) {
	status := "ok"
	blocked := 0.0
	if result.ValidationBlocked {
		status = "blocked"
		blocked = 1
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.rowsTotal.Add(float64(result.RowCount))
	r.runDuration.Observe(duration.Seconds())
	r.lastBlocked.Set(blocked)
	r.lastRunStamp.Set(float64(started.Unix()))

	for _, issue := range issues {
		r.issuesTotal.WithLabelValues(string(issue.IssueType), string(issue.Severity)).Inc()
	}
}

// WriteTextfile writes every series to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
