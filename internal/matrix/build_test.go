package matrix_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/querymatrix/internal/matrix"
)

func TestBuildScenario(t *testing.T) {
	datasets := []matrix.Dataset{
		{Path: "inputs/B.gr", Tests: map[matrix.TestKind][]string{
			matrix.SingleSource: {"ss/B.ss"},
		}},
		{Path: "inputs/A.gr", Tests: map[matrix.TestKind][]string{
			matrix.SingleSource: {"ss/ARand.ss"},
			matrix.Pair:         {"p2p/A.p2p"},
		}},
	}
	progs := []matrix.Program{{Name: "dijkstra", Path: "./dijkstra"}}

	jobs, err := matrix.Build(datasets, progs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{
		filepath.Join("dijkstraResults", "A__ARand.ss.res"),
		filepath.Join("dijkstraResults", "A__A.p2p.res"),
		filepath.Join("dijkstraResults", "B__B.ss.res"),
	}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(want))
	}
	for i, j := range jobs {
		if j.Output != want[i] {
			t.Errorf("job %d output: got %q, want %q", i, j.Output, want[i])
		}
	}
	if jobs[1].Kind != matrix.Pair {
		t.Errorf("job 1 kind: got %v, want p2p", jobs[1].Kind)
	}
}

func TestBuildOrderAndCount(t *testing.T) {
	datasets := []matrix.Dataset{
		{Path: "inputs/g1.gr", Tests: map[matrix.TestKind][]string{
			matrix.SingleSource: {"ss/g1Rand.ss", "ss/g1.ss"},
			matrix.Pair:         {"p2p/g1.p2p"},
		}},
		{Path: "inputs/g2.gr", Tests: map[matrix.TestKind][]string{
			matrix.Pair: {"p2p/g2.p2p", "p2p/g2b.p2p"},
		}},
	}
	progs := []matrix.Program{
		{Name: "dijkstra"},
		{Name: "dial"},
		{Name: "radixheap"},
	}
	jobs, err := matrix.Build(datasets, progs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := matrix.Count(datasets, len(progs)); len(jobs) != want || want != 15 {
		t.Fatalf("got %d jobs, Count=%d, want 15", len(jobs), want)
	}

	// g1 with dijkstra: sorted ss first, then p2p.
	wantTests := []string{"ss/g1.ss", "ss/g1Rand.ss", "p2p/g1.p2p"}
	for i, test := range wantTests {
		if jobs[i].Program.Name != "dijkstra" || jobs[i].Test != test {
			t.Errorf("job %d: got %s %s, want dijkstra %s", i, jobs[i].Program.Name, jobs[i].Test, test)
		}
	}
	if jobs[3].Program.Name != "dial" {
		t.Errorf("job 3 program: got %s, want dial", jobs[3].Program.Name)
	}
	if jobs[9].Dataset != "inputs/g2.gr" {
		t.Errorf("job 9 dataset: got %s, want inputs/g2.gr", jobs[9].Dataset)
	}

	seen := map[string]bool{}
	for _, j := range jobs {
		if seen[j.Output] {
			t.Errorf("duplicate output %s", j.Output)
		}
		seen[j.Output] = true
	}
}

func TestBuildEmpty(t *testing.T) {
	jobs, err := matrix.Build(nil, []matrix.Program{{Name: "dial"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}

	jobs, err = matrix.Build([]matrix.Dataset{{Path: "inputs/x.gr"}}, []matrix.Program{{Name: "dial"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("dataset without artifacts: expected no jobs, got %d", len(jobs))
	}
}

func TestBuildCollision(t *testing.T) {
	datasets := []matrix.Dataset{{Path: "inputs/A.gr", Tests: map[matrix.TestKind][]string{
		matrix.SingleSource: {"ss/A.ss"},
	}}}
	progs := []matrix.Program{
		{Name: "fast", OutputDir: "shared"},
		{Name: "slow", OutputDir: "shared"},
	}
	_, err := matrix.Build(datasets, progs)
	if !errors.Is(err, matrix.ErrCollision) {
		t.Fatalf("expected ErrCollision, got %v", err)
	}
}

func TestResultsDir(t *testing.T) {
	tests := []struct {
		prog matrix.Program
		want string
	}{
		{matrix.Program{Name: "dijkstra"}, "dijkstraResults"},
		{matrix.Program{Name: "dial"}, "dialResults"},
		{matrix.Program{Name: "radixheap"}, "radixheapResults"},
		{matrix.Program{Name: "bellman"}, "bellmanResults"},
		{matrix.Program{Name: "dial", OutputDir: "out/dial"}, "out/dial"},
	}
	for _, tt := range tests {
		if got := tt.prog.ResultsDir(); got != tt.want {
			t.Errorf("ResultsDir(%+v) = %q, want %q", tt.prog, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	got := matrix.OutputPath("dialResults", "inputs/USA-road-t.NY.gr", "p2p/USA-road-t.NY.p2p", matrix.Pair)
	want := filepath.Join("dialResults", "USA-road-t.NY__USA-road-t.NY.p2p.res")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProgramName(t *testing.T) {
	for path, want := range map[string]string{
		"./dijkstra":       "dijkstra",
		"bin/radixheap":    "radixheap",
		"/usr/local/bin/x": "x",
	} {
		if got := matrix.ProgramName(path); got != want {
			t.Errorf("ProgramName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPrepareOutputDirs(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "dialResults")
	jobs := []matrix.Job{
		{Program: matrix.Program{Name: "dial", OutputDir: dir}},
		{Program: matrix.Program{Name: "dial", OutputDir: dir}},
	}
	for i := 0; i < 2; i++ {
		if err := matrix.PrepareOutputDirs(jobs); err != nil {
			t.Fatalf("PrepareOutputDirs (pass %d): %v", i, err)
		}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", err)
	}
}
