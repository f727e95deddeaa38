package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalnine/querymatrix/internal/matrix"
	"github.com/signalnine/querymatrix/internal/process"
)

// Executor runs a single job to completion.
type Executor interface {
	Execute(ctx context.Context, job matrix.Job) Outcome
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job matrix.Job) Outcome

func (f ExecutorFunc) Execute(ctx context.Context, job matrix.Job) Outcome {
	return f(ctx, job)
}

// BuildArgs returns the command-line arguments for a job's program.
func BuildArgs(job matrix.Job) []string {
	switch job.Kind {
	case matrix.SingleSource:
		return []string{"-d", job.Dataset, "-ss", job.Test, "-oss", job.Output}
	case matrix.Pair:
		return []string{"-d", job.Dataset, "-p2p", job.Test, "-op2p", job.Output}
	default:
		panic(fmt.Sprintf("unknown test kind %v", job.Kind))
	}
}

// CommandExecutor runs each job's program through a process.Runner.
type CommandExecutor struct {
	Runner process.Runner
	// Timeout bounds a single job; zero means no limit.
	Timeout time.Duration
}

func (e *CommandExecutor) Execute(ctx context.Context, job matrix.Job) Outcome {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.Runner.Run(ctx, job.Program.Path, BuildArgs(job))
	o := Outcome{Ticket: Ticket{Job: job}, Duration: time.Since(start)}
	if err != nil {
		o.Status = Failed
		o.Err = err
		if res != nil {
			o.Stderr = res.Stderr
		}
		if e.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			o.Err = fmt.Errorf("%w after %s", ErrTimeout, e.Timeout)
		}
		return o
	}
	o.Status = Completed
	o.ExitCode = res.ExitCode
	o.Stderr = res.Stderr
	if res.Duration > 0 {
		o.Duration = res.Duration
	}
	return o
}
