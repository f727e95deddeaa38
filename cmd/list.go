package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/querymatrix/internal/matrix"
)

var flagListJobs bool

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List programs, datasets and (optionally) every job without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Println("Programs:")
			for _, p := range cfg.MatrixPrograms() {
				fmt.Printf("  - %s (%s -> %s/)\n", p.Name, p.Path, p.ResultsDir())
			}

			datasets, err := (&matrix.Scanner{Layout: cfg.MatrixLayout()}).Datasets()
			if err != nil {
				return err
			}
			fmt.Println("\nDatasets:")
			if len(datasets) == 0 {
				fmt.Printf("  (no %s files in %s/)\n", cfg.Layout.DatasetExt, cfg.Layout.Datasets)
			}
			for _, ds := range datasets {
				fmt.Printf("  - %s [ss: %d, p2p: %d]\n", ds.Stem(), len(ds.Tests[matrix.SingleSource]), len(ds.Tests[matrix.Pair]))
			}

			jobs, err := matrix.Build(datasets, cfg.MatrixPrograms())
			if err != nil {
				return err
			}
			fmt.Printf("\nJobs: %d\n", len(jobs))
			if flagListJobs {
				printJobs(jobs)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagListJobs, "jobs", false, "print every job with its output path")
	return cmd
}

func printJobs(jobs []matrix.Job) {
	for i, j := range jobs {
		fmt.Printf("  [%d] %s %s (%s) %s -> %s\n", i+1, j.Program.Name, matrix.Stem(j.Dataset), j.Kind, j.Test, j.Output)
	}
}
