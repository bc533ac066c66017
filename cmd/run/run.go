// Package run contains the command to benchmark a task.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/exascience/parpat"
	"github.com/exascience/parpat/bench"
	"github.com/exascience/parpat/internal/config"
	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/storage/sqlite"
	_ "github.com/exascience/parpat/tasks"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark the strategies of a task",
		Long:  "Time all strategies of a task for a number of rounds, and record the timings.",
		RunE:  run,
		Args:  cobra.NoArgs,
	}

	defaultConfig := config.DefaultConfig()
	flags := cmd.Flags()

	flags.String("task", defaultConfig.Task, "the name of the task to benchmark (see 'parbench list')")

	flags.Int("size", defaultConfig.Size, "the number of generated values of numeric tasks")

	flags.Int("max-value", defaultConfig.MaxValue, "the exclusive upper bound of generated values, 0 selects the task's default")

	flags.String("dir", defaultConfig.Dir, "the directory with the *.txt files of file-backed tasks")

	flags.Int("rounds", defaultConfig.Rounds, "the number of timed rounds per strategy")

	flags.Int("workers", defaultConfig.Workers, "the number of parts of the fixed-partition strategies, 0 selects the number of logical CPUs")

	flags.String("log-format", defaultConfig.Log.Format, "the log format to output logs in")

	flags.String("log-level", defaultConfig.Log.Level, "the log level to use")

	flags.String("store-uri", defaultConfig.Store.URI, "the SQLite data source name to record results in, empty disables recording")

	// NOTE: if you add a new flag here, update the function below, too

	cmd.PreRun = bindRunFlagsFunc(flags)

	return cmd
}

// ReadConfig returns the benchmark configuration based on the values provided in the 'config.yaml' file.
// The 'config.yaml' file is loaded from '/etc/parbench', '$HOME/.parbench', or the current working directory. If no configuration
// file is present, the default values are returned.
func ReadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	viper.SetTypeByDefaultValue(true)
	err := viper.ReadInConfig()
	if err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := ReadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Verify(); err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return Run(cmd.Context(), cfg, log, cmd.OutOrStdout())
}

// Run benchmarks the configured task, writes a report to out, and
// records the results if a store is configured.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	task, err := parpat.New(ctx, cfg.Task, parpat.Options{
		Size:     cfg.Size,
		MaxValue: cfg.MaxValue,
		Dir:      cfg.Dir,
		Workers:  cfg.Workers,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	log.Info("benchmark starting",
		zap.String("task", cfg.Task),
		zap.Int("rounds", cfg.Rounds),
		zap.Int("workers", cfg.Workers))

	report, err := bench.NewRunner(bench.WithRounds(cfg.Rounds), bench.WithLogger(log)).Run(ctx, task)
	if err != nil {
		return err
	}

	if err := WriteReport(out, report); err != nil {
		return err
	}

	if cfg.Store.URI == "" {
		return nil
	}

	store, err := sqlite.New(ctx, cfg.Store.URI, log)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := store.CreateSession(ctx, report.Session())
	if err != nil {
		return err
	}
	if err := store.WriteResults(ctx, session.ID, report.Results()); err != nil {
		return err
	}

	log.Info("results recorded", zap.String("session", session.ID), zap.String("store", cfg.Store.URI))
	_, err = fmt.Fprintf(out, "session %s\n", session.ID)
	return err
}

// WriteReport writes a report as an aligned table.
func WriteReport(out io.Writer, report *bench.Report) error {
	env := report.Environment
	fmt.Fprintf(out, "%s, %s values, %d rounds\n", report.Task, humanize.Comma(int64(report.N)), report.Rounds)
	fmt.Fprintf(out, "%s %s/%s, %d cores, %s\n\n", env.Host, env.OS, env.Arch, env.Cores, env.GoVersion)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "strategy\tresult\tmean ms\tstd-dev ms\t\t")
	for _, m := range report.Measurements {
		var note string
		switch {
		case m.Diverges:
			note = "diverges"
		case m.Strategy == report.Fastest:
			note = "fastest"
		case m.Strategy == report.Slowest:
			note = "slowest"
		}
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%s\t\n", m.Strategy, humanize.Comma(int64(m.Result)), m.MeanMs, m.StdDevMs, note)
	}
	return w.Flush()
}
