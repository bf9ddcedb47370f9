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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/hanoibench/services/hanoi"
)

func TestTurnPrompt_FirstTurn(t *testing.T) {
	turn := Turn{
		Number:    1,
		DiskCount: 3,
		State:     hanoi.Snapshot{A: []int{1, 2, 3}},
		MovesLeft: 14,
	}
	out := TurnPrompt(turn, 0)

	assert.True(t, strings.HasPrefix(out, "3-disk Towers of Hanoi puzzle - Turn #1\n"))
	assert.Contains(t, out, "Tower A: [1, 2, 3]")
	assert.Contains(t, out, "Tower B: empty")
	assert.Contains(t, out, "Tower C: empty")
	assert.Contains(t, out, "Moves remaining in budget: 14")
	assert.NotContains(t, out, "RECENT GAME HISTORY")
}

func TestTurnPrompt_HistoryWindow(t *testing.T) {
	var history []hanoi.MoveRecord
	for i, m := range hanoi.SolveAll(3)[:5] {
		history = append(history, hanoi.MoveRecord{
			Turn:      i + 1,
			Move:      m,
			Valid:     true,
			Reasoning: "because " + m.String(),
			Before:    hanoi.Snapshot{A: []int{i}},
		})
	}
	history[4].Reasoning = ""

	out := TurnPrompt(Turn{Number: 6, DiskCount: 3, History: history}, 3)

	assert.Contains(t, out, "RECENT GAME HISTORY")
	assert.NotContains(t, out, "--- Move 2 ---")
	assert.Contains(t, out, "--- Move 3 ---")
	assert.Contains(t, out, "--- Move 5 ---")
	assert.Equal(t, 3, strings.Count(out, "State before move:"))
	assert.Contains(t, out, "Move made: A -> C")
	assert.Contains(t, out, "Reasoning: (none given)")
	assert.Contains(t, out, "  Tower A: [2]")
}

func TestSystemPrompt_Rules(t *testing.T) {
	assert.Contains(t, SystemPrompt, "Never place a larger disk on top of a smaller disk")
	assert.Contains(t, SystemPrompt, "tower C")
	assert.Contains(t, SystemPrompt, "avoid moves that return the game")
}
