// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hanoi is the deterministic Towers of Hanoi engine used by the
// evaluator.
//
// The package has four parts:
//
//   - GameState: three stacks of disks, mutated only through Apply
//   - Validate: the legality check for a single Move
//   - Solve / MinimumMoves: the canonical optimal solution, A -> C via B
//   - Classify / Assess: budget and outcome grading for a finished run
//
// # Conventions
//
// Disks are numbered 1..n, 1 being the smallest. Towers are stored bottom to
// top internally; every external representation (Snapshot JSON, prompts,
// display) lists disks top first.
//
// # Budget Policy
//
// A run may use at most Budget(n) = 2 * MinimumMoves(n) moves. Solving in
// MinimumMoves(n) moves is OPTIMAL_SUCCESS, solving within the budget is
// SUCCESS, anything else is FAILURE. There is no strict-budget mode.
//
// # Thread Safety
//
// GameState is not safe for concurrent mutation. The evaluator owns one
// state per run and drives it from a single goroutine.
package hanoi
