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
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hanoibench/cmd/hanoibench/config"
	"github.com/AleutianAI/hanoibench/pkg/ux"
	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/evaluator/players"
	"github.com/AleutianAI/hanoibench/services/evaluator/results"
	"github.com/AleutianAI/hanoibench/services/hanoi"
	"github.com/AleutianAI/hanoibench/services/hanoi/display"
	"github.com/AleutianAI/hanoibench/services/llm"
	"github.com/AleutianAI/hanoibench/services/telemetry"
)

// runEvaluation plays one run with the chosen player, prints the graded
// result and exports it.
func runEvaluation(cmd *cobra.Command, args []string) error {
	cfg := app.cfg
	applyRunFlags(cfg)

	n, err := resolveDisks(args, cfg.Run.DefaultDisks)
	if err != nil {
		return err
	}

	log := app.logger.Slog()
	player, err := buildPlayer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := display.New(n, ux.ShouldShowColors())
	frames := ux.GetPersonality().ShowFrames
	if _, remote := player.(*players.LLMPlayer); remote && !frames {
		player = waitingPlayer{player}
	}

	opts := evaluator.Options{
		MaxRetries: cfg.Model.MaxRetries,
		Logger:     log,
		OnTurn:     turnPrinter(renderer, frames),
	}
	if !cfg.Run.Auto && ux.IsInteractive() {
		opts.Continue = func(ctx context.Context, turn int) (bool, error) {
			return ux.Confirm(fmt.Sprintf("Turn %d done. Continue?", turn), "Next move", "Stop")
		}
	}
	runner, err := evaluator.NewRunner(player, opts)
	if err != nil {
		return err
	}

	if frames {
		ux.Raw(renderer.Welcome() + "\n")
		start, err := hanoi.NewGameState(n)
		if err != nil {
			return err
		}
		ux.Raw(renderer.Frame(start.Snapshot(), 0, nil) + "\n")
	}
	ux.Info(fmt.Sprintf("Player %s, %d disks, budget %d moves (optimal %d)",
		player.Name(), n, hanoi.Budget(n), hanoi.MinimumMoves(n)))

	res, err := runner.Run(ctx, n)
	if err != nil {
		return err
	}

	if res.Report.Outcome.Succeeded() && frames {
		ux.Raw(renderer.Completion(res.Report.MovesUsed, res.Report.MinimumMoves) + "\n")
	}
	ux.Raw(renderer.Report(res.Report))
	reportEnding(res)

	if !noSave {
		path, err := results.NewStore(cfg.Run.OutputDir).Save(res, time.Now())
		if err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		ux.Success("Results saved to " + path)
	}

	if cfg.Telemetry.MetricsFile != "" {
		if err := telemetry.WriteMetricsFile(cfg.Telemetry.MetricsFile); err != nil {
			ux.Warning(fmt.Sprintf("Could not write metrics: %v", err))
		} else {
			ux.Muted("Metrics written to " + cfg.Telemetry.MetricsFile)
		}
	}
	return nil
}

// applyRunFlags lets command-line flags override the loaded config.
func applyRunFlags(cfg *config.HanoibenchConfig) {
	if autoMode {
		cfg.Run.Auto = true
	}
	if provider != "" {
		cfg.Model.Provider = provider
	}
	if modelName != "" {
		cfg.Model.Model = modelName
	}
	if outputDir != "" {
		cfg.Run.OutputDir = outputDir
	}
	if metricsFile != "" {
		cfg.Telemetry.MetricsFile = metricsFile
	}
}

// resolveDisks takes the disk count from the argument, then an interactive
// prompt, then the configured default.
func resolveDisks(args []string, def int) (int, error) {
	if len(args) == 1 {
		n, err := ux.ParseIntInRange(args[0], config.MinDisks, config.MaxDisks)
		if err != nil {
			return 0, fmt.Errorf("disks %q: %w", args[0], err)
		}
		return n, nil
	}
	n, err := ux.AskInt("How many disks?",
		fmt.Sprintf("Between %d and %d", config.MinDisks, config.MaxDisks),
		config.MinDisks, config.MaxDisks, def)
	if errors.Is(err, ux.ErrNotInteractive) {
		return def, nil
	}
	return n, err
}

// buildPlayer picks the mock, the Lua script or the configured model.
func buildPlayer(cfg *config.HanoibenchConfig, log *slog.Logger) (evaluator.Player, error) {
	switch {
	case mockName != "":
		mock, err := players.NewMock(mockName, invalidAt)
		if err != nil {
			return nil, err
		}
		return mock, nil
	case scriptPath != "":
		script, err := players.NewLuaPlayer(scriptPath)
		if err != nil {
			return nil, err
		}
		return script, nil
	}

	client, err := llm.NewClient(llm.Config{
		Provider: cfg.Model.Provider,
		APIKey:   cfg.Model.APIKey(),
		Model:    cfg.Model.Model,
		BaseURL:  cfg.Model.BaseURL,
		Timeout:  cfg.Model.Timeout,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Model configured",
		"provider", cfg.Model.Provider,
		"model", client.Model(),
		"api_key_present", cfg.Model.APIKey() != "",
	)
	return players.NewLLMPlayer(client, players.LLMOptions{
		RequestsPerMinute: cfg.Model.RequestsPerMinute,
		HistoryWindow:     cfg.Run.HistoryWindow,
		ReasoningEffort:   cfg.Model.ReasoningEffort,
		Logger:            log,
	}), nil
}

// waitingPlayer shows a spinner while the wrapped player works out its
// move. Single-line output has nothing else on screen during a model call.
type waitingPlayer struct {
	evaluator.Player
}

func (p waitingPlayer) ProposeMove(ctx context.Context, turn evaluator.Turn) (evaluator.Proposal, error) {
	spin := ux.NewSpinner(fmt.Sprintf("Turn %d: waiting for %s", turn.Number, p.Name()))
	spin.Start()
	defer spin.Stop()
	return p.Player.ProposeMove(ctx, turn)
}

// turnPrinter shows each judged proposal: a tower frame in rich modes, a
// single line otherwise.
func turnPrinter(r *display.Renderer, frames bool) func(evaluator.TurnEvent) {
	return func(ev evaluator.TurnEvent) {
		rec := ev.Record
		if !rec.Valid {
			ux.Warning(fmt.Sprintf("Turn %d: %s rejected (%s)", rec.Turn, rec.Move, rec.Reason))
			return
		}
		if frames {
			ux.Raw("\n" + r.Frame(rec.After, ev.MovesUsed, &rec.Move))
			if rec.Reasoning != "" {
				ux.Muted("Reasoning: " + rec.Reasoning)
			}
			ux.Raw(ux.ProgressBar(ev.MovesUsed, ev.Budget, 30) + "\n")
			return
		}
		ux.Info(fmt.Sprintf("turn=%d move=%s moves_used=%d budget=%d", rec.Turn, rec.Move, ev.MovesUsed, ev.Budget))
	}
}

// reportEnding explains runs that stopped for reasons other than the rules.
func reportEnding(res *evaluator.Result) {
	switch res.Termination {
	case evaluator.TerminationPlayerError:
		ux.Error(fmt.Sprintf("Player failed: %v", res.Err))
	case evaluator.TerminationCancelled:
		ux.Warning("Run cancelled")
	case evaluator.TerminationInterrupted:
		ux.Warning("Run stopped by user")
	case evaluator.TerminationBudgetExhausted:
		ux.Warning(fmt.Sprintf("Move budget of %d exhausted", res.Report.Budget))
	case evaluator.TerminationInvalidMove:
		ux.Warning(fmt.Sprintf("Invalid move: %v", res.Err))
	}
}
