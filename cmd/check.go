package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/signalnine/querymatrix/internal/config"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration, inputs and program binaries without running jobs",
		Long:  "Load the config, discover datasets, build the job matrix (which verifies that no two jobs share an output path) and confirm that every program binary can be launched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := config.LoadEnvFile(cfg.EnvFile); err != nil {
				return err
			}
			jobs, err := buildJobs(cfg, "", "")
			if err != nil {
				return err
			}
			fmt.Printf("Matrix: %d jobs, output paths unique\n", len(jobs))

			missing := checkPrograms(cfg)
			for _, m := range missing {
				fmt.Printf("  MISSING %s\n", m)
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d program(s) not runnable", len(missing))
			}
			fmt.Println("All programs found.")
			return nil
		},
	}
}

// checkPrograms returns a description of each program that cannot be
// resolved on the host. Programs run in a container are not checked.
func checkPrograms(cfg *config.Config) []string {
	if cfg.Backend.Kind != "local" {
		return nil
	}
	var missing []string
	for _, p := range cfg.Programs {
		if _, err := exec.LookPath(p.Path); err != nil {
			missing = append(missing, fmt.Sprintf("%s: %v", p.Name, err))
		}
	}
	return missing
}
