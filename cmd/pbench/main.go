// Copyright 2025 go-parbench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pbench times sequential and parallel array kernels over a sweep of
// array sizes and worker counts and reports trusted-mean timings.
//
// Usage:
//
//	pbench                                  # default sweep, writes output.txt
//	pbench -c sweep.yaml -o results.txt     # sizes/threads/iterations from YAML
//	pbench --metrics-file pbench.prom       # also dump Prometheus metrics
//	pbench verify                           # check parallel kernels against sequential ones
//
// Progress markers and the report go to stdout; logs go to stderr.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ajroetker/go-parbench/pbench"
	"github.com/ajroetker/go-parbench/pbench/kernels"
	"github.com/ajroetker/go-parbench/pbench/sweep"
	"github.com/ajroetker/go-parbench/pbench/workerpool"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	outputPath  string
	metricsPath string
	iterations  int
	logLevel    string

	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "pbench",
		Short: "Compare sequential and parallel array kernels across sizes and worker counts",
		Long: `pbench runs fill, sum and reduction kernels with sequential, parallel-for,
sectioned, combined-reduction and critical-section strategies, 100 times per
combination by default, and reports the mean of the runs within one standard
deviation of the raw mean.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogger,
		RunE:              runSweep,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check that every parallel kernel matches its sequential baseline",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML sweep configuration (default: built-in sweep)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", sweep.DefaultOutput, "Results file, one value per line")
	rootCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write Prometheus metrics to this file after the sweep")
	rootCmd.Flags().IntVarP(&iterations, "iterations", "n", sweep.DefaultIterations, "Timed runs per combination")

	rootCmd.AddCommand(verifyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		logger.Error("pbench failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func setupLogger(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// loadConfig builds the sweep configuration from the optional YAML file and
// the flags explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (*sweep.Config, error) {
	cfg := sweep.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = sweep.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = outputPath
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsPath
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runLog := logger.With("run_id", runID)
	host := pbench.CurrentHost()
	runLog.Info("starting sweep",
		"host", host.String(),
		"sizes", cfg.Sizes,
		"threads", cfg.Threads,
		"iterations", cfg.Iterations,
		"output", cfg.Output)
	for _, threads := range cfg.Threads {
		if host.Oversubscribed(threads) {
			runLog.Warn("worker count exceeds GOMAXPROCS, timings include scheduling", "threads", threads, "gomaxprocs", host.MaxProcs)
		}
	}

	driver, err := sweep.NewDriver(cfg)
	if err != nil {
		return err
	}
	driver.Progress = cmd.OutOrStdout()
	driver.Logger = runLog
	if cfg.MetricsFile != "" {
		driver.Metrics = sweep.NewMetrics(runID)
	}

	table, err := driver.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}
	if err := driver.WriteReport(table, cmd.OutOrStdout()); err != nil {
		return err
	}
	runLog.Info("wrote results", "path", cfg.Output, "values", driver.Lines())

	if driver.Metrics != nil {
		if err := driver.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		runLog.Info("wrote metrics", "path", cfg.MetricsFile)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, threads := range cfg.Threads {
		if !pbench.Parallel.AppliesTo(threads) {
			continue
		}
		pool := workerpool.New(threads)
		env := kernels.Env{Pool: pool, Threads: threads}
		for _, size := range cfg.Sizes {
			if err := kernels.Verify(env, size); err != nil {
				pool.Close()
				return fmt.Errorf("threads %d: %w", threads, err)
			}
			fmt.Fprintf(out, "ok\tthreads=%d\tsize=%d\n", threads, size)
		}
		pool.Close()
	}
	logger.Info("all parallel kernels match their sequential baselines")
	return nil
}
