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
	"iter"
	"math"
	"math/bits"
	"slices"
)

// MinimumMoves returns 2^n - 1, the length of an optimal n-disk solution.
//
// Computed in closed form; the sequence is never generated. Returns 0 for
// n <= 0 and saturates at math.MaxInt once 2^n - 1 no longer fits in an int
// (n >= 63 on 64-bit platforms).
func MinimumMoves(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= bits.UintSize-1 {
		return math.MaxInt
	}
	return 1<<uint(n) - 1
}

// Solve returns the canonical optimal solution for n disks.
//
// The sequence moves the stack from A to C using B as auxiliary: move n-1
// disks A -> B, move disk n A -> C, move n-1 disks B -> C. It is lazy and
// restartable; each range over the returned iterator regenerates the same
// moves from the start. n <= 0 yields nothing.
//
// Example:
//
//	for m := range hanoi.Solve(3) {
//	    if err := state.Apply(m); err != nil { ... }
//	}
func Solve(n int) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		solve(n, TowerA, TowerC, TowerB, yield)
	}
}

// SolveAll materialises Solve(n) into a slice of length MinimumMoves(n).
func SolveAll(n int) []Move {
	if n <= 0 {
		return nil
	}
	out := make([]Move, 0, MinimumMoves(n))
	return slices.AppendSeq(out, Solve(n))
}

// solve emits the moves for k disks and reports whether the consumer wants
// more.
func solve(k int, from, to, via TowerID, yield func(Move) bool) bool {
	if k <= 0 {
		return true
	}
	return solve(k-1, from, via, to, yield) &&
		yield(Move{From: from, To: to}) &&
		solve(k-1, via, to, from, yield)
}
