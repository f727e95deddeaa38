package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/signalnine/querymatrix/internal/matrix"
	"github.com/signalnine/querymatrix/internal/metrics"
	"github.com/signalnine/querymatrix/internal/runner"
)

func family(t *testing.T, r *metrics.Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}

func counterValue(fam *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range fam.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func outcome(status runner.Status, code int, err error) runner.Outcome {
	return runner.Outcome{
		Ticket:   runner.Ticket{Job: matrix.Job{Program: matrix.Program{Name: "dial"}, Kind: matrix.Pair}},
		Started:  true,
		Status:   status,
		ExitCode: code,
		Err:      err,
		Duration: 250 * time.Millisecond,
	}
}

func TestRecorderCountsByStatus(t *testing.T) {
	r := metrics.NewRecorder()
	for _, o := range []runner.Outcome{
		outcome(runner.Completed, 0, nil),
		outcome(runner.Completed, 0, nil),
		outcome(runner.Completed, 7, nil),
		outcome(runner.Failed, 0, errors.New("missing binary")),
	} {
		r.JobStarted(o.Ticket)
		r.JobFinished(o)
	}

	fam := family(t, r, "querymatrix_jobs_total")
	for status, want := range map[string]float64{"succeeded": 2, "exit_error": 1, "failed": 1} {
		got := counterValue(fam, map[string]string{"program": "dial", "kind": "p2p", "status": status})
		if got != want {
			t.Errorf("jobs_total{status=%q}: got %v, want %v", status, got, want)
		}
	}

	inflight := family(t, r, "querymatrix_jobs_inflight")
	if v := inflight.GetMetric()[0].GetGauge().GetValue(); v != 0 {
		t.Errorf("inflight after all jobs finished: got %v, want 0", v)
	}

	hist := family(t, r, "querymatrix_job_duration_seconds")
	if c := hist.GetMetric()[0].GetHistogram().GetSampleCount(); c != 4 {
		t.Errorf("duration samples: got %d, want 4", c)
	}
}

func TestRecorderSkippedJob(t *testing.T) {
	r := metrics.NewRecorder()
	o := outcome(runner.Failed, 0, errors.New("not started"))
	o.Started = false
	r.JobFinished(o)

	inflight := family(t, r, "querymatrix_jobs_inflight")
	if v := inflight.GetMetric()[0].GetGauge().GetValue(); v != 0 {
		t.Errorf("inflight: got %v, want 0", v)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := metrics.NewRecorder()
	r.JobStarted(runner.Ticket{})
	r.JobFinished(outcome(runner.Completed, 0, nil))

	path := filepath.Join(t.TempDir(), "querymatrix.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(data), `querymatrix_jobs_total{kind="p2p",program="dial",status="succeeded"} 1`) {
		t.Errorf("textfile missing job counter:\n%s", data)
	}
}
