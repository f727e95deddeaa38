package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/signalnine/querymatrix/internal/matrix"
)

var (
	ErrInvalidWorkers = errors.New("worker count must be at least 1")
	ErrTimeout        = errors.New("job timed out")
	ErrPanic          = errors.New("job panicked")
)

// Status distinguishes a process that ran to completion, whatever its exit
// code, from one that could not be run at all.
type Status int

const (
	Completed Status = iota
	Failed
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "failed"
}

// Ticket places a job in the enumeration for progress output.
type Ticket struct {
	Index int
	Total int
	Job   matrix.Job
}

// Outcome is the terminal result of one job.
type Outcome struct {
	Ticket
	// Started is false for jobs skipped because the run was canceled.
	Started  bool
	Status   Status
	ExitCode int
	Err      error
	Stderr   string
	Duration time.Duration
}

// Success reports whether the job completed with exit code 0.
func (o Outcome) Success() bool {
	return o.Status == Completed && o.ExitCode == 0
}

// Reason is a short human-readable description of the outcome.
func (o Outcome) Reason() string {
	switch {
	case o.Success():
		return "completed"
	case o.Status == Completed:
		return fmt.Sprintf("exit code %d", o.ExitCode)
	case errors.Is(o.Err, ErrTimeout):
		return "timeout"
	case o.Err != nil:
		return o.Err.Error()
	default:
		return "failed"
	}
}
