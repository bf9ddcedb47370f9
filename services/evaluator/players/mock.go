// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package players

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/hanoi"
)

// Mock scenario names accepted by NewMock.
const (
	MockOptimal        = "optimal"
	MockInvalidMove    = "invalid-move"
	MockBudgetExceeded = "budget-exceeded"
)

// DefaultInvalidAt is the turn on which the invalid-move mock misbehaves.
const DefaultInvalidAt = 3

// ErrUnknownMock is returned by NewMock for unrecognised scenarios.
var ErrUnknownMock = errors.New("unknown mock scenario")

// MockScenarios lists the accepted scenario names.
func MockScenarios() []string {
	return []string{MockOptimal, MockInvalidMove, MockBudgetExceeded}
}

// MockPlayer plays a fixed, offline strategy. It exists to exercise the
// evaluator end to end without a model.
type MockPlayer struct {
	scenario  string
	invalidAt int
	optimal   []hanoi.Move
	optimalN  int
}

// NewMock returns a mock player for scenario. invalidAt <= 0 uses
// DefaultInvalidAt and only matters for MockInvalidMove.
func NewMock(scenario string, invalidAt int) (*MockPlayer, error) {
	scenario = strings.ToLower(strings.TrimSpace(scenario))
	switch scenario {
	case MockOptimal, MockInvalidMove, MockBudgetExceeded:
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMock, scenario, strings.Join(MockScenarios(), ", "))
	}
	if invalidAt <= 0 {
		invalidAt = DefaultInvalidAt
	}
	return &MockPlayer{scenario: scenario, invalidAt: invalidAt}, nil
}

// Name returns "mock:<scenario>".
func (p *MockPlayer) Name() string {
	return "mock:" + p.scenario
}

// ProposeMove implements evaluator.Player.
func (p *MockPlayer) ProposeMove(ctx context.Context, turn evaluator.Turn) (evaluator.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return evaluator.Proposal{}, err
	}
	switch p.scenario {
	case MockInvalidMove:
		if turn.Number >= p.invalidAt {
			return invalidProposal(turn)
		}
		return p.optimalProposal(turn)
	case MockBudgetExceeded:
		return shuttleProposal(turn)
	default:
		return p.optimalProposal(turn)
	}
}

func (p *MockPlayer) optimalProposal(turn evaluator.Turn) (evaluator.Proposal, error) {
	if p.optimalN != turn.DiskCount || p.optimal == nil {
		p.optimal = hanoi.SolveAll(turn.DiskCount)
		p.optimalN = turn.DiskCount
	}
	i := turn.Number - 1
	if i < 0 || i >= len(p.optimal) {
		return evaluator.Proposal{}, fmt.Errorf("%w: optimal path has no move %d", evaluator.ErrPermanent, turn.Number)
	}
	return evaluator.Proposal{
		Move:      p.optimal[i],
		Reasoning: fmt.Sprintf("Step %d of the %d-move recursive solution.", turn.Number, len(p.optimal)),
	}, nil
}

// invalidProposal picks a move that is illegal in the current position,
// preferring a size violation over an empty source.
func invalidProposal(turn evaluator.Turn) (evaluator.Proposal, error) {
	state, err := hanoi.NewGameStateFrom(turn.State)
	if err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: %w", evaluator.ErrPermanent, err)
	}

	var emptySource *hanoi.Move
	for _, from := range hanoi.Towers {
		for _, to := range hanoi.Towers {
			if from == to {
				continue
			}
			m := hanoi.Move{From: from, To: to}
			err := hanoi.Validate(state, m)
			switch {
			case errors.Is(err, hanoi.ErrSizeViolation):
				return evaluator.Proposal{Move: m, Reasoning: "Deliberately placing a larger disk on a smaller one."}, nil
			case errors.Is(err, hanoi.ErrEmptySource) && emptySource == nil:
				emptySource = &m
			}
		}
	}
	if emptySource != nil {
		return evaluator.Proposal{Move: *emptySource, Reasoning: "Deliberately moving from an empty tower."}, nil
	}
	return evaluator.Proposal{
		Move:      hanoi.Move{From: hanoi.TowerA, To: hanoi.TowerA},
		Reasoning: "Deliberately moving a disk onto its own tower.",
	}, nil
}

// shuttleProposal moves disk 1 back and forth between A and B, which is
// always legal and never solves the puzzle.
func shuttleProposal(turn evaluator.Turn) (evaluator.Proposal, error) {
	if top := turn.State.Tower(hanoi.TowerA); len(top) > 0 && top[0] == 1 {
		return evaluator.Proposal{Move: hanoi.Move{From: hanoi.TowerA, To: hanoi.TowerB}, Reasoning: "Shuttling the smallest disk."}, nil
	}
	if top := turn.State.Tower(hanoi.TowerB); len(top) > 0 && top[0] == 1 {
		return evaluator.Proposal{Move: hanoi.Move{From: hanoi.TowerB, To: hanoi.TowerA}, Reasoning: "Shuttling the smallest disk."}, nil
	}
	return evaluator.Proposal{Move: hanoi.Move{From: hanoi.TowerC, To: hanoi.TowerA}, Reasoning: "Bringing the smallest disk back."}, nil
}
