package matrix

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source yields the datasets of a run.
type Source interface {
	Datasets() ([]Dataset, error)
}

// Layout describes where datasets and test artifacts live on disk.
type Layout struct {
	DatasetDir   string
	DatasetExt   string
	SingleSource string
	Pair         string
}

// Scanner discovers datasets and their artifacts from a Layout.
type Scanner struct {
	Layout Layout
}

// Datasets lists every dataset file and the artifacts prefixed by its stem.
// A missing dataset directory is an error; a missing artifact directory
// means no artifacts of that kind.
func (s *Scanner) Datasets() ([]Dataset, error) {
	entries, err := os.ReadDir(s.Layout.DatasetDir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset dir: %w", err)
	}

	var datasets []Dataset
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != s.Layout.DatasetExt {
			continue
		}
		path := filepath.Join(s.Layout.DatasetDir, e.Name())
		ds := Dataset{Path: path, Tests: map[TestKind][]string{}}
		for _, kind := range Kinds {
			tests, err := matchArtifacts(s.dirFor(kind), ds.Stem(), kind.Ext())
			if err != nil {
				return nil, err
			}
			ds.Tests[kind] = tests
		}
		datasets = append(datasets, ds)
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Path < datasets[j].Path })
	return datasets, nil
}

func (s *Scanner) dirFor(kind TestKind) string {
	if kind == Pair {
		return s.Layout.Pair
	}
	return s.Layout.SingleSource
}

func matchArtifacts(dir, stem, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading test dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, stem) || filepath.Ext(name) != ext {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
