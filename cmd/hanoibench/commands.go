// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hanoibench/cmd/hanoibench/config"
	"github.com/AleutianAI/hanoibench/pkg/logging"
	"github.com/AleutianAI/hanoibench/pkg/ux"
	"github.com/AleutianAI/hanoibench/services/telemetry"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// --- Global Command Variables ---
var (
	configPath       string
	logLevel         string
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	// run
	autoMode    bool
	mockName    string
	invalidAt   int
	scriptPath  string
	provider    string
	modelName   string
	outputDir   string
	metricsFile string
	noSave      bool

	// solve
	solveDelay time.Duration

	// results
	resultsDir string

	rootCmd = &cobra.Command{
		Use:   "hanoibench",
		Short: "Evaluate model reasoning on the Towers of Hanoi",
		Long: `hanoibench asks a model for one Towers of Hanoi move at a time, checks
every move against the rules and grades the run against the optimal
solution with a budget of twice the minimum number of moves.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	runCmd = &cobra.Command{
		Use:   "run [disks]",
		Short: "Play one evaluation run and export the graded result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEvaluation, // Defined in cmd_run.go
	}

	solveCmd = &cobra.Command{
		Use:   "solve [disks]",
		Short: "Show the optimal solution move by move",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve, // Defined in cmd_solve.go
	}

	resultsCmd = &cobra.Command{
		Use:   "results",
		Short: "List exported results, newest first",
		Args:  cobra.NoArgs,
		RunE:  runResults, // Defined in cmd_results.go
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the hanoibench configuration",
	}
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (API keys are never shown)",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ux.Raw(app.configPath + "\n")
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the hanoibench version",
		Args:  cobra.NoArgs,
		// No config or telemetry needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			ux.Raw("hanoibench " + Version + "\n")
		},
	}
)

// app carries what setup prepared for the running command.
var app struct {
	cfg        *config.HanoibenchConfig
	configPath string
	logger     *logging.Logger
	shutdown   func(context.Context) error
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.hanoibench/hanoibench.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&personalityLevel, "personality", "", "output style: full, standard, minimal, machine")

	rf := runCmd.Flags()
	rf.BoolVar(&autoMode, "auto", false, "play every turn without asking to continue")
	rf.StringVar(&mockName, "mock", "", "offline player: optimal, invalid-move, budget-exceeded")
	rf.IntVar(&invalidAt, "invalid-at", 0, "turn on which the invalid-move mock misbehaves (default 3)")
	rf.StringVar(&scriptPath, "script", "", "Lua strategy file defining propose(turn)")
	rf.StringVar(&provider, "provider", "", "model provider: openai or anthropic")
	rf.StringVar(&modelName, "model", "", "model id, overrides the config")
	rf.StringVar(&outputDir, "output-dir", "", "directory for exported results")
	rf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	rf.BoolVar(&noSave, "no-save", false, "do not export the result")
	runCmd.MarkFlagsMutuallyExclusive("mock", "script")

	solveCmd.Flags().DurationVar(&solveDelay, "delay", 0, "pause between frames, e.g. 500ms")

	resultsCmd.Flags().StringVar(&resultsDir, "dir", "", "directory to list (default run.output_dir)")

	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(runCmd, solveCmd, resultsCmd, configCmd, versionCmd)
}

// setup resolves personality, config, logging and telemetry for every
// command.
func setup(cmd *cobra.Command, args []string) error {
	if personalityLevel != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
	} else {
		ux.InitPersonality()
	}

	cfg, path, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	app.cfg = cfg
	app.configPath = path
	app.logger = logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "hanoibench",
		JSON:    cfg.Logging.JSON,
	})

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = Version
	tcfg.TraceExporter = cfg.Telemetry.TraceExporter
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	shutdown, err := telemetry.Init(contextOf(cmd), tcfg)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	app.shutdown = shutdown
	return nil
}

// teardown flushes telemetry and closes the log file. It is safe to call
// more than once.
func teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if app.shutdown != nil {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		errs = append(errs, app.shutdown(sctx))
		cancel()
		app.shutdown = nil
	}
	if app.logger != nil {
		errs = append(errs, app.logger.Close())
		app.logger = nil
	}
	return errors.Join(errs...)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
