package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/querymatrix/internal/result"
)

// Write renders a summary as "table" (default), "markdown" or "json".
func Write(w io.Writer, s *result.Summary, format string) error {
	switch format {
	case "markdown":
		return writeMarkdown(s, w)
	case "json":
		return writeJSON(s, w)
	case "table", "":
		return writeTable(s, w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeTable(s *result.Summary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRAM\tJOBS\tFAILED\tPASS RATE\tMEAN TIME")
	fmt.Fprintln(tw, strings.Repeat("-", 60))
	for _, p := range s.Programs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\t%.2fs\n",
			p.Name, p.Jobs, p.Failures, p.PassRate*100, p.MeanDurationS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal jobs: %d, failed: %d\n", s.Total, s.Failed)
	if len(s.Failures) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Failed jobs:")
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  [%d] %s -d %s %s (%s): %s\n", f.Index, f.Program, f.Dataset, f.Test, f.Kind, f.Reason)
	}
	return nil
}

func writeMarkdown(s *result.Summary, w io.Writer) error {
	fmt.Fprintln(w, "| Program | Jobs | Failed | Pass Rate | Mean Time |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, p := range s.Programs {
		fmt.Fprintf(w, "| %s | %d | %d | %.0f%% | %.2fs |\n",
			p.Name, p.Jobs, p.Failures, p.PassRate*100, p.MeanDurationS)
	}
	fmt.Fprintf(w, "\n**Total jobs:** %d, **failed:** %d\n", s.Total, s.Failed)
	if len(s.Failures) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\n| # | Program | Dataset | Test | Kind | Reason |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|")
	for _, f := range s.Failures {
		fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %s |\n", f.Index, f.Program, f.Dataset, f.Test, f.Kind, f.Reason)
	}
	return nil
}

func writeJSON(s *result.Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
