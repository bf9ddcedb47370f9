// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/hanoibench/services/hanoi"
	"github.com/AleutianAI/hanoibench/services/telemetry"
)

// Termination says why a run stopped.
type Termination string

const (
	TerminationSolved          Termination = "solved"
	TerminationInvalidMove     Termination = "invalid_move"
	TerminationBudgetExhausted Termination = "budget_exhausted"
	TerminationPlayerError     Termination = "player_error"
	TerminationCancelled       Termination = "cancelled"
	TerminationInterrupted     Termination = "interrupted"
)

// DefaultRetryBackoff is the base delay between player retries. Attempt k
// waits k times this value.
const DefaultRetryBackoff = 500 * time.Millisecond

// TurnEvent is reported to Options.OnTurn after every proposal.
type TurnEvent struct {
	RunID     string
	Record    hanoi.MoveRecord
	MovesUsed int
	Budget    int
}

// Options tunes a Runner. The zero value is usable.
type Options struct {
	// MaxRetries is the number of extra attempts after a failed proposal.
	MaxRetries int

	// RetryBackoff overrides DefaultRetryBackoff. Negative disables waiting.
	RetryBackoff time.Duration

	// OnTurn, when set, is called after each proposal is judged.
	OnTurn func(TurnEvent)

	// Continue, when set, is asked after each valid, non-final move whether
	// the run should go on. Returning false ends the run as interrupted.
	Continue func(ctx context.Context, turn int) (bool, error)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result is the full record of one run.
type Result struct {
	RunID       string
	Player      string
	DiskCount   int
	Report      hanoi.Report
	Termination Termination
	Records     []hanoi.MoveRecord
	Final       hanoi.Snapshot

	// Err holds the invalid move or player error that ended the run.
	Err error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall-clock time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner plays games between a Player and the rules.
type Runner struct {
	player Player
	opts   Options
	logger *slog.Logger
}

// NewRunner creates a runner for player.
func NewRunner(player Player, opts Options) (*Runner, error) {
	if player == nil {
		return nil, ErrNilPlayer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Runner{player: player, opts: opts, logger: logger}, nil
}

// Run plays one n-disk game to termination.
//
// # Inputs
//
//   - ctx: cancels the run between turns and inside player calls
//   - n: disk count, 1..hanoi.MaxDisks
//
// # Outputs
//
//   - *Result: always non-nil when err is nil, whatever the outcome
//   - error: only for an invalid disk count; game failures are outcomes
func (r *Runner) Run(ctx context.Context, n int) (*Result, error) {
	state, err := hanoi.NewGameState(n)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Player:    r.player.Name(),
		DiskCount: n,
		StartedAt: time.Now().UTC(),
	}
	log := r.logger.With("run_id", res.RunID, "player", res.Player, "disk_count", n)

	ctx, span := telemetry.StartSpan(ctx, "hanoibench.evaluator", "Runner.Run",
		trace.WithAttributes(
			attribute.String("run_id", res.RunID),
			attribute.String("player", res.Player),
			attribute.Int("disk_count", n),
		),
	)
	defer span.End()

	budget := hanoi.Budget(n)
	used := 0
	hitInvalid := false
	log.Info("Run started", "budget", budget, "minimum_moves", hanoi.MinimumMoves(n))

loop:
	for number := 1; ; number++ {
		switch {
		case state.IsSolved():
			res.Termination = TerminationSolved
			break loop
		case used >= budget:
			res.Termination = TerminationBudgetExhausted
			break loop
		case ctx.Err() != nil:
			res.Termination = TerminationCancelled
			res.Err = ctx.Err()
			break loop
		}

		turn := Turn{
			Number:    number,
			DiskCount: n,
			State:     state.Snapshot(),
			History:   slices.Clone(res.Records),
			MovesLeft: budget - used,
		}
		proposal, err := r.propose(ctx, turn)
		if err != nil {
			res.Err = err
			if ctx.Err() != nil {
				res.Termination = TerminationCancelled
			} else {
				res.Termination = TerminationPlayerError
			}
			log.Warn("Player failed", "turn", number, "error", err)
			break
		}

		rec := hanoi.MoveRecord{
			Turn:      number,
			Move:      proposal.Move,
			Reasoning: proposal.Reasoning,
			Before:    turn.State,
		}
		if err := state.Apply(proposal.Move); err != nil {
			rec.Reason = hanoi.ReasonCode(err)
			rec.After = turn.State
			res.Records = append(res.Records, rec)
			res.Err = err
			res.Termination = TerminationInvalidMove
			hitInvalid = true
			recordMove(ctx, res.Player, false)
			r.notify(res.RunID, rec, used, budget)
			log.Info("Invalid move", "turn", number, "move", proposal.Move.String(), "reason", rec.Reason)
			break
		}

		used++
		rec.Valid = true
		rec.After = state.Snapshot()
		res.Records = append(res.Records, rec)
		recordMove(ctx, res.Player, true)
		r.notify(res.RunID, rec, used, budget)
		log.Debug("Move applied", "turn", number, "move", proposal.Move.String(), "moves_used", used)

		if r.opts.Continue != nil && !state.IsSolved() && used < budget {
			ok, err := r.opts.Continue(ctx, number)
			if err != nil {
				log.Warn("Continue prompt failed, stopping", "error", err)
			}
			if !ok || err != nil {
				res.Termination = TerminationInterrupted
				break
			}
		}
	}

	res.Final = state.Snapshot()
	res.FinishedAt = time.Now().UTC()
	res.Report = hanoi.Assess(n, res.Records, state.IsSolved(), hitInvalid)

	span.SetAttributes(
		attribute.String("outcome", res.Report.Outcome.String()),
		attribute.String("termination", string(res.Termination)),
		attribute.Int("moves_used", res.Report.MovesUsed),
	)
	if res.Report.Outcome.Succeeded() {
		telemetry.SetSpanOK(span)
	} else if res.Err != nil {
		telemetry.RecordError(span, res.Err)
	}
	recordRun(ctx, res)

	log.Info("Run finished",
		"outcome", res.Report.Outcome.String(),
		"termination", string(res.Termination),
		"moves_used", res.Report.MovesUsed,
		"duration", res.Duration(),
	)
	return res, nil
}

// propose asks the player for a move, retrying transient failures.
func (r *Runner) propose(ctx context.Context, turn Turn) (Proposal, error) {
	ctx, span := telemetry.StartSpan(ctx, "hanoibench.evaluator", "Runner.propose",
		trace.WithAttributes(attribute.Int("turn", turn.Number)),
	)
	defer span.End()

	maxAttempts := 1 + r.opts.MaxRetries
	made := 0
	var lastErr error
	for made < maxAttempts {
		if made > 0 {
			recordRetry(ctx, r.player.Name())
			if err := r.backoff(ctx, made); err != nil {
				lastErr = err
				break
			}
		}

		made++
		start := time.Now()
		p, err := r.player.ProposeMove(ctx, turn)
		recordProposal(ctx, r.player.Name(), time.Since(start), err)
		if err == nil {
			span.SetAttributes(attribute.String("move", p.Move.String()), attribute.Int("attempts", made))
			return p, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, ErrPermanent) {
			break
		}
		r.logger.Debug("Player attempt failed", "turn", turn.Number, "attempt", made, "error", err)
	}

	err := &ProposalError{Player: r.player.Name(), Turn: turn.Number, Attempts: made, Err: lastErr}
	telemetry.RecordError(span, err)
	return Proposal{}, err
}

// backoff waits attempt*RetryBackoff or until ctx is done.
func (r *Runner) backoff(ctx context.Context, attempt int) error {
	if r.opts.RetryBackoff < 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt) * r.opts.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (r *Runner) notify(runID string, rec hanoi.MoveRecord, used, budget int) {
	if r.opts.OnTurn == nil {
		return
	}
	r.opts.OnTurn(TurnEvent{RunID: runID, Record: rec, MovesUsed: used, Budget: budget})
}
