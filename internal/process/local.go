package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"
)

// stderrTail bounds how much diagnostic output is kept per process.
const stderrTail = 4 << 10

// waitDelay is how long Run waits for output pipes to close after the
// process group has been killed.
const waitDelay = 2 * time.Second

// Local runs programs as child processes of the current one.
type Local struct {
	// Env is appended to the inherited environment.
	Env map[string]string
	// Stdout receives the program's standard output; nil discards it.
	Stdout io.Writer
}

func (l *Local) Run(ctx context.Context, program string, args []string) (*Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Env = append(os.Environ(), envSlice(l.Env)...)
	if l.Stdout != nil {
		cmd.Stdout = l.Stdout
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	killProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	res := &Result{Stderr: stderr.String(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("running %s: %w", program, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("starting %s: %w", program, err)
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
