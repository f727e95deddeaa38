package process_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/querymatrix/internal/process"
)

func TestLocalSuccess(t *testing.T) {
	var out bytes.Buffer
	l := &process.Local{Stdout: &out, Env: map[string]string{"QM_GREETING": "hello"}}
	res, err := l.Run(context.Background(), "sh", []string{"-c", `echo "$QM_GREETING"`})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code: got %d, want 0", res.ExitCode)
	}
	if out.String() != "hello\n" {
		t.Errorf("stdout: got %q, want %q", out.String(), "hello\n")
	}
}

func TestLocalNonZeroExit(t *testing.T) {
	l := &process.Local{}
	res, err := l.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 7"})
	if err != nil {
		t.Fatalf("nonzero exit must not be an error: %v", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("exit code: got %d, want 7", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "broken") {
		t.Errorf("stderr: got %q, want it to contain %q", res.Stderr, "broken")
	}
}

func TestLocalMissingBinary(t *testing.T) {
	l := &process.Local{}
	missing := filepath.Join(t.TempDir(), "no-such-program")
	if _, err := l.Run(context.Background(), missing, nil); err == nil {
		t.Fatal("expected launch error for missing binary")
	}
}

func TestLocalNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(path, []byte("not a program"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&process.Local{}).Run(context.Background(), path, nil); err == nil {
		t.Fatal("expected launch error for non-executable file")
	}
}

func TestLocalContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := (&process.Local{}).Run(ctx, "sleep", []string{"5"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestLocalDeadlineKillsChildren(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := (&process.Local{}).Run(ctx, "sh", []string{"-c", "echo loading graph >&2; sleep 4; exit 0"})
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Run blocked %s past a 200ms deadline", elapsed)
	}
	if res == nil || !strings.Contains(res.Stderr, "loading graph") {
		t.Errorf("stderr captured before the deadline was lost: %+v", res)
	}
}

func TestLocalStderrTail(t *testing.T) {
	res, err := (&process.Local{}).Run(context.Background(), "sh", []string{"-c", "head -c 10000 /dev/zero | tr '\\0' x >&2; echo END >&2"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Stderr) > 4<<10 {
		t.Errorf("stderr not bounded: %d bytes", len(res.Stderr))
	}
	if !strings.HasSuffix(res.Stderr, "END\n") {
		t.Errorf("stderr tail lost the end of output")
	}
}

func TestRunnerFunc(t *testing.T) {
	var got []string
	r := process.RunnerFunc(func(ctx context.Context, program string, args []string) (*process.Result, error) {
		got = append([]string{program}, args...)
		return &process.Result{ExitCode: 3}, nil
	})
	res, err := r.Run(context.Background(), "./dial", []string{"-d", "g.gr"})
	if err != nil || res.ExitCode != 3 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
	if strings.Join(got, " ") != "./dial -d g.gr" {
		t.Errorf("args: got %v", got)
	}
}
