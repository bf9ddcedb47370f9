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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hanoibench/pkg/ux"
	"github.com/AleutianAI/hanoibench/services/hanoi"
	"github.com/AleutianAI/hanoibench/services/hanoi/display"
)

// runSolve replays the optimal solution, one frame per move.
func runSolve(cmd *cobra.Command, args []string) error {
	n, err := resolveDisks(args, app.cfg.Run.DefaultDisks)
	if err != nil {
		return err
	}
	state, err := hanoi.NewGameState(n)
	if err != nil {
		return err
	}
	ctx := contextOf(cmd)
	renderer := display.New(n, ux.ShouldShowColors())
	frames := ux.GetPersonality().ShowFrames

	ux.Title(fmt.Sprintf("Optimal solution for %d disks: %d moves", n, hanoi.MinimumMoves(n)))
	if frames {
		ux.Raw(renderer.Frame(state.Snapshot(), 0, nil) + "\n")
	}

	count := 0
	for m := range hanoi.Solve(n) {
		if err := state.Apply(m); err != nil {
			return fmt.Errorf("solver produced an illegal move %s: %w", m, err)
		}
		count++
		if frames {
			ux.Raw("\n" + renderer.Frame(state.Snapshot(), count, &m))
		} else {
			ux.Info(fmt.Sprintf("move=%d %s", count, m))
		}
		if solveDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(solveDelay):
			}
		}
	}

	if !state.IsSolved() {
		return fmt.Errorf("solver finished without solving %d disks", n)
	}
	if frames {
		ux.Raw("\n" + renderer.Completion(count, hanoi.MinimumMoves(n)))
	} else {
		ux.Success(fmt.Sprintf("solved in %d moves", count))
	}
	return nil
}
