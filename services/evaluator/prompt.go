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
	"fmt"
	"strings"

	"github.com/AleutianAI/hanoibench/services/hanoi"
)

// DefaultHistoryWindow is how many recent moves a prompt replays.
const DefaultHistoryWindow = 3

// SystemPrompt states the rules, the goal and the reply contract.
const SystemPrompt = `You are an expert at solving the Towers of Hanoi puzzle.

Your task is to analyze the current game state and suggest the next optimal move.

RULES:
1. Only move one disk at a time
2. Only move the top disk from a tower
3. Never place a larger disk on top of a smaller disk
4. The goal is to move all disks to tower C

Towers are listed top disk first. Disk 1 is the smallest.

STRATEGY:
Consider the recursive structure of the puzzle and plan several moves ahead so every move works toward the minimal solution.

IMPORTANT: If you see previous game states in the context, avoid moves that return the game to one of them. Cycling back to an earlier configuration wastes moves from a limited budget.

RESPONSE:
Reply with your reasoning and the move, where source_tower and destination_tower are each one of "A", "B" or "C".`

// TurnPrompt describes turn for a language model: the current towers and
// up to window recent moves, each with the position it was made from, the
// move and the reasoning given at the time. window <= 0 uses
// DefaultHistoryWindow.
func TurnPrompt(turn Turn, window int) string {
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d-disk Towers of Hanoi puzzle - Turn #%d\n", turn.DiskCount, turn.Number)
	fmt.Fprintf(&b, "Moves remaining in budget: %d\n\n", turn.MovesLeft)
	b.WriteString("CURRENT STATE:\n")
	writeTowers(&b, turn.State, "")

	recent := turn.History
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if len(recent) == 0 {
		return b.String()
	}

	b.WriteString("\nRECENT GAME HISTORY:\n")
	for _, rec := range recent {
		fmt.Fprintf(&b, "\n--- Move %d ---\n", rec.Turn)
		b.WriteString("State before move:\n")
		writeTowers(&b, rec.Before, "  ")
		fmt.Fprintf(&b, "Move made: %s\n", rec.Move)
		reasoning := rec.Reasoning
		if reasoning == "" {
			reasoning = "(none given)"
		}
		fmt.Fprintf(&b, "Reasoning: %s\n", reasoning)
	}
	return b.String()
}

func writeTowers(b *strings.Builder, snap hanoi.Snapshot, indent string) {
	for _, id := range hanoi.Towers {
		fmt.Fprintf(b, "%sTower %s: %s\n", indent, id, towerList(snap.Tower(id)))
	}
}

func towerList(disks []int) string {
	if len(disks) == 0 {
		return "empty"
	}
	parts := make([]string, len(disks))
	for i, d := range disks {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
