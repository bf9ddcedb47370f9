// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hanoi

import (
	"fmt"
	"math"
)

// BudgetMultiplier scales MinimumMoves(n) into the move budget of a run.
const BudgetMultiplier = 2

// -----------------------------------------------------------------------------
// Outcome
// -----------------------------------------------------------------------------

// Outcome is the state of a run.
//
// InProgress is the only non-terminal value. Once a run reaches
// OptimalSuccess, Success or Failure no further turns are processed.
type Outcome int

const (
	// InProgress means the run has not terminated.
	InProgress Outcome = iota
	// OptimalSuccess means the puzzle was solved in MinimumMoves(n) moves.
	OptimalSuccess
	// Success means the puzzle was solved within Budget(n) moves.
	Success
	// Failure means an invalid move, an exhausted budget or an unsolved
	// termination.
	Failure
)

// String returns the upper snake case outcome name.
func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "IN_PROGRESS"
	case OptimalSuccess:
		return "OPTIMAL_SUCCESS"
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return fmt.Sprintf("outcome(%d)", o)
	}
}

// Terminal reports whether no more turns may be played.
func (o Outcome) Terminal() bool {
	return o != InProgress
}

// Succeeded reports whether the puzzle was solved within budget.
func (o Outcome) Succeeded() bool {
	return o == OptimalSuccess || o == Success
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "IN_PROGRESS":
		*o = InProgress
	case "OPTIMAL_SUCCESS":
		*o = OptimalSuccess
	case "SUCCESS":
		*o = Success
	case "FAILURE":
		*o = Failure
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Budget and classification
// -----------------------------------------------------------------------------

// Budget returns the maximum number of moves a run may use. Like
// MinimumMoves it saturates at math.MaxInt instead of wrapping.
func Budget(n int) int {
	minimum := MinimumMoves(n)
	if minimum > math.MaxInt/BudgetMultiplier {
		return math.MaxInt
	}
	return BudgetMultiplier * minimum
}

// Classify grades a terminated run.
//
// # Inputs
//
//   - n: disk count
//   - movesUsed: number of valid moves applied
//   - solved: whether the final state is solved
//   - hitInvalid: whether the run ended on an invalid move
//
// # Outputs
//
//   - OptimalSuccess when solved in at most MinimumMoves(n) moves
//   - Success when solved in at most Budget(n) moves
//   - Failure otherwise, including any run that hit an invalid move
func Classify(n, movesUsed int, solved, hitInvalid bool) Outcome {
	switch {
	case hitInvalid, !solved:
		return Failure
	case movesUsed > Budget(n):
		return Failure
	case movesUsed <= MinimumMoves(n):
		return OptimalSuccess
	default:
		return Success
	}
}

// Efficiency returns 100 * MinimumMoves(n) / movesUsed.
//
// The second result is false when the puzzle was not solved; efficiency is
// undefined in that case and callers must not substitute zero.
func Efficiency(n, movesUsed int, solved bool) (float64, bool) {
	if !solved || movesUsed <= 0 {
		return 0, false
	}
	return 100 * float64(MinimumMoves(n)) / float64(movesUsed), true
}

// Accuracy returns the percentage of proposed moves that equal the canonical
// Solve(n) move at the same index.
//
// Only one optimal path is compared against. For n >= 1 the optimal
// solution is unique, but any detour shifts every later index, so a run that
// recovers still scores poorly after the detour. Read it as "followed the
// canonical path", not as "played well".
//
// The second result is false when there are no proposals.
func Accuracy(n int, proposed []Move) (float64, bool) {
	if len(proposed) == 0 {
		return 0, false
	}
	matches := 0
	i := 0
	for want := range Solve(n) {
		if i >= len(proposed) {
			break
		}
		if proposed[i] == want {
			matches++
		}
		i++
	}
	return 100 * float64(matches) / float64(len(proposed)), true
}

// Round1 rounds a percentage to one decimal place for display and export.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// -----------------------------------------------------------------------------
// Move records and reports
// -----------------------------------------------------------------------------

// MoveRecord is one proposed move and what happened to it.
type MoveRecord struct {
	// Turn is the 1-based turn number.
	Turn int `json:"turn"`

	// Move is the proposed move.
	Move Move `json:"ai_move"`

	// Valid reports whether the move passed Validate and was applied.
	Valid bool `json:"is_valid"`

	// Reason is the ReasonCode of an invalid move, empty when valid.
	Reason string `json:"invalid_reason,omitempty"`

	// Reasoning is the collaborator's explanation for the move.
	Reasoning string `json:"ai_reasoning,omitempty"`

	// Before is the position the move was proposed in.
	Before Snapshot `json:"state_before"`

	// After is the position after the move; equal to Before when invalid.
	After Snapshot `json:"state_after"`
}

// Report is the graded summary of a terminated run.
type Report struct {
	Outcome       Outcome
	DiskCount     int
	MovesUsed     int
	MinimumMoves  int
	Budget        int
	Solved        bool
	HitInvalid    bool
	Efficiency    float64
	HasEfficiency bool
	Accuracy      float64
	HasAccuracy   bool
}

// ExceededOptimal reports whether more than the minimum moves were used.
func (r Report) ExceededOptimal() bool {
	return r.MovesUsed > r.MinimumMoves
}

// ExceededBudget reports whether the budget was used up without solving,
// or overrun.
func (r Report) ExceededBudget() bool {
	return r.MovesUsed > r.Budget || (!r.Solved && !r.HitInvalid && r.MovesUsed >= r.Budget)
}

// Assess grades a run from its move records.
//
// movesUsed counts valid records; accuracy is computed over every proposal,
// including a final invalid one.
func Assess(n int, records []MoveRecord, solved, hitInvalid bool) Report {
	proposed := make([]Move, 0, len(records))
	used := 0
	for _, r := range records {
		proposed = append(proposed, r.Move)
		if r.Valid {
			used++
		}
	}
	rep := Report{
		Outcome:      Classify(n, used, solved, hitInvalid),
		DiskCount:    n,
		MovesUsed:    used,
		MinimumMoves: MinimumMoves(n),
		Budget:       Budget(n),
		Solved:       solved,
		HitInvalid:   hitInvalid,
	}
	rep.Efficiency, rep.HasEfficiency = Efficiency(n, used, solved)
	rep.Accuracy, rep.HasAccuracy = Accuracy(n, proposed)
	return rep
}
