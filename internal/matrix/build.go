package matrix

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrCollision reports two jobs resolving to the same output path.
var ErrCollision = errors.New("output path collision")

// Dataset is one input instance together with the test artifacts whose
// file names start with the dataset stem.
type Dataset struct {
	Path string
	// Tests holds the artifacts per kind.
	Tests map[TestKind][]string
}

// Stem is the identifier used to match artifacts and name results.
func (d Dataset) Stem() string {
	return Stem(d.Path)
}

// Build enumerates the full job matrix: datasets outermost, then programs,
// then single-source artifacts before pair artifacts. Datasets and artifacts
// are visited in path order, programs in the order given.
func Build(datasets []Dataset, programs []Program) ([]Job, error) {
	sorted := make([]Dataset, len(datasets))
	copy(sorted, datasets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var jobs []Job
	for _, ds := range sorted {
		for _, prog := range programs {
			for _, kind := range Kinds {
				tests := append([]string(nil), ds.Tests[kind]...)
				sort.Strings(tests)
				for _, test := range tests {
					jobs = append(jobs, Job{
						Program: prog,
						Dataset: ds.Path,
						Kind:    kind,
						Test:    test,
						Output:  OutputPath(prog.ResultsDir(), ds.Path, test, kind),
					})
				}
			}
		}
	}
	if err := CheckUnique(jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CheckUnique verifies that no two jobs write the same result file.
func CheckUnique(jobs []Job) error {
	seen := make(map[string]int, len(jobs))
	for i, j := range jobs {
		if prev, ok := seen[j.Output]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrCollision, jobs[prev].ID(), j.ID(), j.Output)
		}
		seen[j.Output] = i
	}
	return nil
}

// PrepareOutputDirs creates every distinct results directory used by jobs.
func PrepareOutputDirs(jobs []Job) error {
	done := map[string]bool{}
	for _, j := range jobs {
		dir := j.Program.ResultsDir()
		if done[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir %s: %w", dir, err)
		}
		done[dir] = true
	}
	return nil
}

// Count returns the number of jobs Build would produce.
func Count(datasets []Dataset, programs int) int {
	n := 0
	for _, ds := range datasets {
		for _, kind := range Kinds {
			n += len(ds.Tests[kind]) * programs
		}
	}
	return n
}
