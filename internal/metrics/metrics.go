// Package metrics records job counts and durations with Prometheus
// collectors so a run can be exported to a node_exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalnine/querymatrix/internal/runner"
)

// Metric label values for job status.
const (
	statusSucceeded = "succeeded"
	statusExitError = "exit_error"
	statusFailed    = "failed"
)

// Recorder owns a private registry; hook methods are safe for concurrent use.
type Recorder struct {
	Registry *prometheus.Registry

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	inflight    prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querymatrix_jobs_total",
				Help: "Jobs finished, by program, test kind and status.",
			},
			[]string{"program", "kind", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "querymatrix_job_duration_seconds",
				Help:    "Wall time of a single job, in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"program", "kind"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "querymatrix_jobs_inflight",
				Help: "Jobs currently running.",
			},
		),
	}
	r.Registry.MustRegister(r.jobsTotal, r.jobDuration, r.inflight)
	return r
}

// JobStarted is a runner.Pool OnStart hook.
func (r *Recorder) JobStarted(t runner.Ticket) {
	r.inflight.Inc()
}

// JobFinished is a runner.Pool OnFinish hook. Jobs that never started are
// counted but do not touch the inflight gauge or duration histogram.
func (r *Recorder) JobFinished(o runner.Outcome) {
	prog, kind := o.Job.Program.Name, o.Job.Kind.String()
	r.jobsTotal.WithLabelValues(prog, kind, statusLabel(o)).Inc()
	if o.Started {
		r.inflight.Dec()
		r.jobDuration.WithLabelValues(prog, kind).Observe(o.Duration.Seconds())
	}
}

// WriteTextfile exports the current values in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

func statusLabel(o runner.Outcome) string {
	switch {
	case o.Success():
		return statusSucceeded
	case o.Status == runner.Completed:
		return statusExitError
	default:
		return statusFailed
	}
}
