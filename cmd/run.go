package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signalnine/querymatrix/internal/config"
	"github.com/signalnine/querymatrix/internal/docker"
	"github.com/signalnine/querymatrix/internal/matrix"
	"github.com/signalnine/querymatrix/internal/metrics"
	"github.com/signalnine/querymatrix/internal/process"
	"github.com/signalnine/querymatrix/internal/report"
	"github.com/signalnine/querymatrix/internal/result"
	"github.com/signalnine/querymatrix/internal/runner"
)

// ErrJobsFailed is returned after a run in which at least one job failed.
var ErrJobsFailed = errors.New("jobs failed")

var (
	flagProgram     string
	flagDataset     string
	flagTimeout     time.Duration
	flagBackend     string
	flagMetricsFile string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [workers]",
		Short: "Execute the full job matrix",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBenchmark,
	}
	cmd.Flags().StringVar(&flagProgram, "program", "", "filter to a single program")
	cmd.Flags().StringVar(&flagDataset, "dataset", "", "filter to datasets whose stem matches (trailing * for prefix)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-job timeout (0 keeps the configured value)")
	cmd.Flags().StringVar(&flagBackend, "backend", "", "override backend (local, docker)")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if flagBackend != "" {
		cfg.Backend.Kind = flagBackend
	}
	if flagMetricsFile != "" {
		cfg.Metrics.Textfile = flagMetricsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	workers, err := resolveWorkers(args, cfg.Workers, logger)
	if err != nil {
		return err
	}
	env, err := config.LoadEnvFile(cfg.EnvFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runMatrix(ctx, &runOpts{
		cfg:           cfg,
		workers:       workers,
		runner:        newProcessRunner(cfg, env),
		logger:        logger,
		out:           os.Stdout,
		programFilter: flagProgram,
		datasetFilter: flagDataset,
	})
	if err != nil || summary == nil {
		return err
	}
	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d", ErrJobsFailed, summary.Failed, summary.Total)
	}
	return nil
}

type runOpts struct {
	cfg           *config.Config
	workers       int
	runner        process.Runner
	logger        *logrus.Logger
	out           io.Writer
	programFilter string
	datasetFilter string
}

// runMatrix discovers datasets, builds the job list and runs it to
// completion. It returns a nil summary when there is nothing to run.
func runMatrix(ctx context.Context, o *runOpts) (*result.Summary, error) {
	if o.workers < 1 {
		return nil, fmt.Errorf("%w: got %d", runner.ErrInvalidWorkers, o.workers)
	}
	jobs, err := buildJobs(o.cfg, o.programFilter, o.datasetFilter)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		fmt.Fprintf(o.out, "No jobs to run: no %s datasets with matching tests in %s/\n", o.cfg.Layout.DatasetExt, o.cfg.Layout.Datasets)
		return nil, nil
	}
	if err := matrix.PrepareOutputDirs(jobs); err != nil {
		return nil, err
	}

	runID := result.NewRunID()
	runDir, err := result.CreateRunDir(o.cfg.Results.Dir, runID)
	if err != nil {
		return nil, err
	}
	log := o.logger.WithField("run_id", runID)
	log.WithField("dir", runDir).Info("created run directory")

	reporter := report.NewReporter(o.out)
	recorder := metrics.NewRecorder()
	pool := &runner.Pool{
		Workers:  o.workers,
		Executor: &runner.CommandExecutor{Runner: o.runner, Timeout: o.cfg.Timeout},
		OnStart: func(t runner.Ticket) {
			recorder.JobStarted(t)
			reporter.Started(t)
		},
		OnFinish: recorder.JobFinished,
	}

	fmt.Fprintf(o.out, "Total runs to perform: %d\n", len(jobs))
	fmt.Fprintf(o.out, "Running with up to %d parallel workers.\n\n", o.workers)

	started := time.Now()
	outcomes, err := pool.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}
	summary := reporter.Consume(outcomes)
	summary.RunID = runID
	summary.StartedAt = started.UTC()
	summary.DurationS = time.Since(started).Seconds()
	summary.Workers = o.workers

	if err := result.WriteSummary(runDir, summary); err != nil {
		log.WithError(err).Warn("could not write run summary")
	}
	if path := o.cfg.Metrics.Textfile; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			log.WithError(err).Warn("could not write metrics textfile")
		}
	}

	fmt.Fprintln(o.out, "\n--- Results ---")
	if err := report.Write(o.out, summary, "table"); err != nil {
		return summary, err
	}
	return summary, nil
}

// resolveWorkers reads the optional positional worker count. A value that
// is not an integer falls back to def with a warning; a value below one is
// rejected.
func resolveWorkers(args []string, def int, logger *logrus.Logger) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		logger.WithField("arg", args[0]).Warnf("invalid worker count, using default %d", def)
		return def, nil
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: got %d", runner.ErrInvalidWorkers, n)
	}
	return n, nil
}

func buildJobs(cfg *config.Config, programFilter, datasetFilter string) ([]matrix.Job, error) {
	scanner := &matrix.Scanner{Layout: cfg.MatrixLayout()}
	datasets, err := scanner.Datasets()
	if err != nil {
		return nil, err
	}
	programs := filterPrograms(cfg.MatrixPrograms(), programFilter)
	if programFilter != "" && len(programs) == 0 {
		return nil, fmt.Errorf("no program named %q", programFilter)
	}
	return matrix.Build(filterDatasets(datasets, datasetFilter), programs)
}

func newProcessRunner(cfg *config.Config, env map[string]string) process.Runner {
	if cfg.Backend.Kind == "docker" {
		return &docker.Runner{
			Image:       cfg.Backend.Image,
			Env:         env,
			CPULimit:    cfg.Backend.CPULimit,
			MemoryLimit: cfg.Backend.MemoryLimit,
			UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		}
	}
	return &process.Local{Env: env}
}
