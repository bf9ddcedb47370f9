// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evaluator runs a Towers of Hanoi game against a Player and grades
// the result.
//
// The Runner owns the only GameState. Each turn it hands the player a
// read-only Turn (snapshot plus move history), validates the reply against
// the real state, and stops on the first of: solved, invalid move, budget
// exhausted, player failure, cancellation or user interruption.
//
// # Thread Safety
//
// A Runner may be reused for sequential runs. Concurrent Run calls on the
// same Runner are safe as long as the Player itself is safe for concurrent
// use; the built-in players are not.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/hanoibench/services/hanoi"
)

// ErrPermanent marks a player error that retrying cannot fix, such as a
// rejected API key or a broken script. Wrap it with fmt.Errorf("%w: %w").
var ErrPermanent = errors.New("permanent player error")

// ErrNilPlayer is returned by NewRunner when no player is given.
var ErrNilPlayer = errors.New("evaluator: player is nil")

// Turn is everything a player may look at when choosing a move.
type Turn struct {
	// Number is the 1-based turn number.
	Number int

	// DiskCount is the puzzle size.
	DiskCount int

	// State is the current position, top disk first.
	State hanoi.Snapshot

	// History holds every valid move applied so far, oldest first.
	History []hanoi.MoveRecord

	// MovesLeft is the remaining move budget including this turn.
	MovesLeft int
}

// Proposal is a player's answer for one turn.
type Proposal struct {
	Move      hanoi.Move
	Reasoning string
}

// Player proposes moves. Implementations must honour ctx cancellation.
type Player interface {
	// Name identifies the player in logs and exported results.
	Name() string

	// ProposeMove returns the next move for turn.
	ProposeMove(ctx context.Context, turn Turn) (Proposal, error)
}

// ProposalError is returned when a player fails to produce a move after
// every retry.
type ProposalError struct {
	Player   string
	Turn     int
	Attempts int
	Err      error
}

func (e *ProposalError) Error() string {
	return fmt.Sprintf("player %s failed on turn %d after %d attempt(s): %v", e.Player, e.Turn, e.Attempts, e.Err)
}

func (e *ProposalError) Unwrap() error {
	return e.Err
}
