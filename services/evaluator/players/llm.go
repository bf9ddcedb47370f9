// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package players holds the evaluator.Player implementations: a language
// model player, deterministic mock players and a Lua scripted player.
package players

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/llm"
	"github.com/AleutianAI/hanoibench/services/telemetry"
)

// LLMOptions tunes an LLMPlayer.
type LLMOptions struct {
	// RequestsPerMinute caps model calls. Zero disables pacing.
	RequestsPerMinute int

	// HistoryWindow is the number of recent moves replayed in the prompt.
	HistoryWindow int

	// ReasoningEffort is passed through to reasoning models.
	ReasoningEffort string

	// Temperature overrides the provider default when set.
	Temperature *float32

	Logger *slog.Logger
}

// LLMPlayer asks a chat model for every move.
type LLMPlayer struct {
	client  llm.LLMClient
	limiter *rate.Limiter
	opts    LLMOptions
	logger  *slog.Logger
}

// NewLLMPlayer wraps client as a player.
func NewLLMPlayer(client llm.LLMClient, opts LLMOptions) *LLMPlayer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = evaluator.DefaultHistoryWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMPlayer{client: client, limiter: limiter, opts: opts, logger: logger}
}

// Name returns "llm:<model>".
func (p *LLMPlayer) Name() string {
	return "llm:" + p.client.Model()
}

// ProposeMove implements evaluator.Player.
func (p *LLMPlayer) ProposeMove(ctx context.Context, turn evaluator.Turn) (evaluator.Proposal, error) {
	ctx, span := telemetry.StartSpan(ctx, "hanoibench.players", "LLMPlayer.ProposeMove")
	defer span.End()
	span.SetAttributes(attribute.String("model", p.client.Model()), attribute.Int("turn", turn.Number))

	if err := p.limiter.Wait(ctx); err != nil {
		return evaluator.Proposal{}, fmt.Errorf("rate limiter: %w", err)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: evaluator.SystemPrompt},
		{Role: llm.RoleUser, Content: evaluator.TurnPrompt(turn, p.opts.HistoryWindow)},
	}
	params := llm.GenerationParams{
		Temperature:     p.opts.Temperature,
		ReasoningEffort: p.opts.ReasoningEffort,
		Schema:          MoveSchema(),
	}

	text, err := p.client.Chat(ctx, messages, params)
	if err != nil {
		telemetry.RecordError(span, err)
		if !llm.IsRetryable(err) {
			return evaluator.Proposal{}, fmt.Errorf("%w: %w", evaluator.ErrPermanent, err)
		}
		return evaluator.Proposal{}, err
	}

	proposal, err := ParseProposal(text)
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Debug("Unreadable model reply", "turn", turn.Number, "error", err)
		return evaluator.Proposal{}, err
	}
	span.SetAttributes(attribute.String("move", proposal.Move.String()))
	return proposal, nil
}
