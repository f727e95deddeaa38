package cmd

import (
	"strings"

	"github.com/signalnine/querymatrix/internal/matrix"
)

func filterPrograms(progs []matrix.Program, name string) []matrix.Program {
	if name == "" {
		return progs
	}
	var filtered []matrix.Program
	for _, p := range progs {
		if p.Name == name {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func filterDatasets(datasets []matrix.Dataset, pattern string) []matrix.Dataset {
	if pattern == "" {
		return datasets
	}
	var filtered []matrix.Dataset
	for _, ds := range datasets {
		if matchStem(ds.Stem(), pattern) {
			filtered = append(filtered, ds)
		}
	}
	return filtered
}

func matchStem(stem, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(stem, strings.TrimSuffix(pattern, "*"))
	}
	return stem == pattern
}
