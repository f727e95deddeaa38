package matrix

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TestKind selects the query convention of a job's test artifact.
type TestKind int

const (
	SingleSource TestKind = iota
	Pair
)

// Kinds lists every TestKind in enumeration order.
var Kinds = []TestKind{SingleSource, Pair}

// String returns the suffix used in result file names and artifact extensions.
func (k TestKind) String() string {
	switch k {
	case SingleSource:
		return "ss"
	case Pair:
		return "p2p"
	default:
		return fmt.Sprintf("TestKind(%d)", int(k))
	}
}

// Ext is the file extension of test artifacts of this kind.
func (k TestKind) Ext() string {
	return "." + k.String()
}

// defaultOutputDirs maps the stock programs to their result directories.
var defaultOutputDirs = map[string]string{
	"dijkstra":  "dijkstraResults",
	"dial":      "dialResults",
	"radixheap": "radixheapResults",
}

// Program is a benchmark executable and where its result files go.
type Program struct {
	Name      string
	Path      string
	OutputDir string
}

// ProgramName derives a program identifier from its executable path.
func ProgramName(path string) string {
	return strings.TrimPrefix(filepath.Base(path), "./")
}

// ResultsDir returns the directory the program writes its result files to.
func (p Program) ResultsDir() string {
	if p.OutputDir != "" {
		return p.OutputDir
	}
	if dir, ok := defaultOutputDirs[p.Name]; ok {
		return dir
	}
	return p.Name + "Results"
}

// Job is one (program, dataset, test artifact) combination. Jobs are built
// once by Build and never modified.
type Job struct {
	Program Program
	Dataset string
	Kind    TestKind
	Test    string
	Output  string
}

// ID identifies the job in logs and failure summaries.
func (j Job) ID() string {
	return fmt.Sprintf("%s/%s/%s", j.Program.Name, Stem(j.Dataset), filepath.Base(j.Test))
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath names the result file for a job. Downstream plotting and table
// scripts parse these names, so the layout must not change:
// <dir>/<datasetStem>__<testStem>.<kind>.res
func OutputPath(dir, dataset, test string, kind TestKind) string {
	name := fmt.Sprintf("%s__%s.%s.res", Stem(dataset), Stem(test), kind)
	return filepath.Join(dir, name)
}
