// Package process abstracts launching an external program and collecting
// its exit status.
package process

import (
	"context"
	"time"
)

// Result is what a finished process reports back.
type Result struct {
	ExitCode int
	Stderr   string
	Duration time.Duration
}

// Runner launches program with args and waits for it to exit. A nonzero
// exit code is reported in Result, not as an error; errors are reserved for
// failures to launch or wait on the process. When the context ends first,
// Run returns the context error along with a Result holding the stderr
// captured so far.
type Runner interface {
	Run(ctx context.Context, program string, args []string) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, program string, args []string) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, program string, args []string) (*Result, error) {
	return f(ctx, program, args)
}
