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
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/Shopify/go-lua"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/hanoi"
)

// luaEntryPoint is the global function a strategy script must define.
const luaEntryPoint = "propose"

// ErrNoEntryPoint is returned when a script does not define propose.
var ErrNoEntryPoint = errors.New("lua script does not define a propose(turn) function")

// LuaPlayer runs a strategy written in Lua.
//
// The script defines
//
//	function propose(turn)
//	  -- turn.disks, turn.turn, turn.moves_left
//	  -- turn.towers.A / .B / .C: arrays of disk sizes, top first
//	  -- turn.history: array of {turn=, source=, destination=}
//	  return "A", "C", "optional reasoning"
//	end
//
// Script state persists between turns, so a strategy may keep its own
// bookkeeping in globals. Script errors are permanent: the same input will
// fail the same way.
type LuaPlayer struct {
	name  string
	mu    sync.Mutex
	state *lua.State
}

// NewLuaPlayer loads the strategy script at path.
func NewLuaPlayer(path string) (*LuaPlayer, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := lua.LoadFile(l, path, ""); err != nil {
		return nil, fmt.Errorf("load lua script %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newLuaPlayer(l, name)
}

// NewLuaPlayerFromSource loads a strategy from source text.
func NewLuaPlayerFromSource(name, source string) (*LuaPlayer, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := lua.LoadString(l, source); err != nil {
		return nil, fmt.Errorf("load lua script %s: %w", name, err)
	}
	return newLuaPlayer(l, name)
}

// newLuaPlayer runs the loaded chunk and checks the entry point exists.
func newLuaPlayer(l *lua.State, name string) (*LuaPlayer, error) {
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua script %s: %w", name, err)
	}
	l.Global(luaEntryPoint)
	isFn := l.IsFunction(-1)
	l.Pop(1)
	if !isFn {
		return nil, fmt.Errorf("%s: %w", name, ErrNoEntryPoint)
	}
	return &LuaPlayer{name: name, state: l}, nil
}

// Name returns "lua:<script>".
func (p *LuaPlayer) Name() string {
	return "lua:" + p.name
}

// ProposeMove implements evaluator.Player. The script cannot be interrupted
// once called; ctx is checked before each call.
func (p *LuaPlayer) ProposeMove(ctx context.Context, turn evaluator.Turn) (evaluator.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return evaluator.Proposal{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	l := p.state

	base := l.Top()
	defer l.SetTop(base)

	l.Global(luaEntryPoint)
	pushTurn(l, turn)
	if err := l.ProtectedCall(1, 3, 0); err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: lua propose: %w", evaluator.ErrPermanent, err)
	}

	src, _ := l.ToString(-3)
	dst, _ := l.ToString(-2)
	reasoning, _ := l.ToString(-1)

	from, err := hanoi.ParseTowerID(src)
	if err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: lua source: %w", evaluator.ErrPermanent, err)
	}
	to, err := hanoi.ParseTowerID(dst)
	if err != nil {
		return evaluator.Proposal{}, fmt.Errorf("%w: lua destination: %w", evaluator.ErrPermanent, err)
	}
	return evaluator.Proposal{Move: hanoi.Move{From: from, To: to}, Reasoning: reasoning}, nil
}

// pushTurn pushes turn onto the stack as a Lua table.
func pushTurn(l *lua.State, turn evaluator.Turn) {
	l.NewTable()
	l.PushInteger(turn.DiskCount)
	l.SetField(-2, "disks")
	l.PushInteger(turn.Number)
	l.SetField(-2, "turn")
	l.PushInteger(turn.MovesLeft)
	l.SetField(-2, "moves_left")

	l.NewTable()
	for _, id := range hanoi.Towers {
		l.NewTable()
		for i, d := range turn.State.Tower(id) {
			l.PushInteger(d)
			l.RawSetInt(-2, i+1)
		}
		l.SetField(-2, id.String())
	}
	l.SetField(-2, "towers")

	l.NewTable()
	for i, rec := range turn.History {
		l.NewTable()
		l.PushInteger(rec.Turn)
		l.SetField(-2, "turn")
		l.PushString(rec.Move.From.String())
		l.SetField(-2, "source")
		l.PushString(rec.Move.To.String())
		l.SetField(-2, "destination")
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "history")
}
