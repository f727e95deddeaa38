// Package report prints per-job progress and aggregates outcomes into a
// run summary.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/signalnine/querymatrix/internal/matrix"
	"github.com/signalnine/querymatrix/internal/result"
	"github.com/signalnine/querymatrix/internal/runner"
)

// stderrLines is how much of a failing job's stderr is echoed.
const stderrLines = 5

// Reporter is the single owner of progress output and the failure tally.
// Started may be called from any goroutine; Consume must be called once.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	start lipgloss.Style
	done  lipgloss.Style
	fail  lipgloss.Style
}

func NewReporter(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:     w,
		start: r.NewStyle().Foreground(lipgloss.Color("6")),
		done:  r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Started prints the START line for a job. It is a runner.Pool OnStart hook.
func (r *Reporter) Started(t runner.Ticket) {
	j := t.Job
	r.printf("[%d/%d] %s %s: %s (%s) using %s -> %s\n",
		t.Index, t.Total, r.start.Render("START"), j.Program.Name,
		matrix.Stem(j.Dataset), j.Kind, filepath.Base(j.Test), j.Output)
}

// Consume drains outcomes, printing one line per job, and returns the
// aggregate once the channel is closed.
func (r *Reporter) Consume(outcomes <-chan runner.Outcome) *result.Summary {
	type accum struct {
		jobs     int
		failures int
		duration time.Duration
	}
	var order []string
	byProg := map[string]*accum{}
	s := &result.Summary{}

	for o := range outcomes {
		s.Total++
		name := o.Job.Program.Name
		a, ok := byProg[name]
		if !ok {
			a = &accum{}
			byProg[name] = a
			order = append(order, name)
		}
		a.jobs++
		a.duration += o.Duration

		if o.Success() {
			r.printf("[%d/%d] %s %s (%.2fs)\n", o.Index, o.Total, r.done.Render("DONE"), name, o.Duration.Seconds())
			continue
		}
		s.Failed++
		a.failures++
		s.Failures = append(s.Failures, failureOf(o))
		r.printf("[%d/%d] %s %s: %s\n", o.Index, o.Total, r.fail.Render("FAIL"), name, o.Reason())
		for _, line := range tailLines(o.Stderr, stderrLines) {
			r.printf("    | %s\n", line)
		}
	}

	sort.Strings(order)
	for _, name := range order {
		a := byProg[name]
		s.Programs = append(s.Programs, result.ProgramSummary{
			Name:          name,
			Jobs:          a.jobs,
			Failures:      a.failures,
			PassRate:      float64(a.jobs-a.failures) / float64(a.jobs),
			MeanDurationS: a.duration.Seconds() / float64(a.jobs),
		})
	}
	sort.Slice(s.Failures, func(i, j int) bool { return s.Failures[i].Index < s.Failures[j].Index })
	return s
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

func failureOf(o runner.Outcome) result.Failure {
	f := result.Failure{
		Index:   o.Index,
		Program: o.Job.Program.Name,
		Dataset: o.Job.Dataset,
		Test:    o.Job.Test,
		Kind:    o.Job.Kind.String(),
		Output:  o.Job.Output,
		Reason:  o.Reason(),
	}
	if o.Status == runner.Completed {
		f.ExitCode = o.ExitCode
	}
	return f
}

func tailLines(s string, n int) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
