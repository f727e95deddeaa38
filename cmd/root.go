package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signalnine/querymatrix/internal/config"
)

var (
	cfgFile      string
	flagLogLevel string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "querymatrix",
		Short:        "Run every shortest-path program against every dataset and query file",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "querymatrix.yaml", "config file path")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newReportCmd())
	return root
}

// loadConfig reads the config file. A missing file at the default path
// falls back to the built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return cfg, err
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return config.NewLogger(os.Stderr, level)
}
