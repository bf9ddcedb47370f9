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
	"slices"
	"strings"
)

// MaxDisks is the largest disk count NewGameState accepts.
//
// MinimumMoves(MaxDisks) still fits comfortably in an int on 64-bit
// platforms.
const MaxDisks = 32

// =============================================================================
// Tower Identifiers
// =============================================================================

// TowerID names one of the three towers.
//
// The zero value is TowerA. TowerID marshals to and from the single
// upper-case letter "A", "B" or "C".
type TowerID uint8

const (
	// TowerA is the starting tower.
	TowerA TowerID = iota
	// TowerB is the auxiliary tower.
	TowerB
	// TowerC is the goal tower.
	TowerC
)

// Towers lists every TowerID in display order.
var Towers = [3]TowerID{TowerA, TowerB, TowerC}

// String returns "A", "B" or "C".
func (t TowerID) String() string {
	switch t {
	case TowerA:
		return "A"
	case TowerB:
		return "B"
	case TowerC:
		return "C"
	default:
		return fmt.Sprintf("tower(%d)", t)
	}
}

// Valid reports whether t is one of the three towers.
func (t TowerID) Valid() bool {
	return t <= TowerC
}

// ParseTowerID parses a tower letter, case-insensitively.
//
// Surrounding whitespace and a leading "tower" word are tolerated so that
// model output such as "Tower b" parses.
func ParseTowerID(s string) (TowerID, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimSpace(strings.TrimPrefix(v, "TOWER"))
	switch v {
	case "A":
		return TowerA, nil
	case "B":
		return TowerB, nil
	case "C":
		return TowerC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTower, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TowerID) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTower, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TowerID) UnmarshalText(text []byte) error {
	id, err := ParseTowerID(string(text))
	if err != nil {
		return err
	}
	*t = id
	return nil
}

// =============================================================================
// Moves
// =============================================================================

// Move relocates the top disk of From onto To.
type Move struct {
	From TowerID `json:"source_tower"`
	To   TowerID `json:"destination_tower"`
}

// NewMove builds a Move, rejecting identical source and destination.
func NewMove(from, to TowerID) (Move, error) {
	m := Move{From: from, To: to}
	if !from.Valid() || !to.Valid() {
		return m, fmt.Errorf("%w: %s -> %s", ErrUnknownTower, from, to)
	}
	if from == to {
		return m, &InvalidMoveError{Reason: ErrSameTower, Move: m}
	}
	return m, nil
}

// String returns "A -> C".
func (m Move) String() string {
	return m.From.String() + " -> " + m.To.String()
}

// =============================================================================
// Game State
// =============================================================================

// GameState holds the three towers of an n-disk puzzle.
//
// Each tower is stored bottom to top, so the top disk is the last element.
// The zero value is not usable; build one with NewGameState.
type GameState struct {
	disks  int
	towers [3][]int
}

// NewGameState returns a puzzle with disks 1..n stacked on tower A.
//
// # Inputs
//
//   - n: disk count, 1 <= n <= MaxDisks
//
// # Outputs
//
//   - *GameState: the starting position
//   - error: ErrInvalidDiskCount when n is out of range
func NewGameState(n int) (*GameState, error) {
	if n < 1 || n > MaxDisks {
		return nil, fmt.Errorf("%w: %d (supported 1-%d)", ErrInvalidDiskCount, n, MaxDisks)
	}
	s := &GameState{disks: n}
	s.towers[TowerA] = make([]int, 0, n)
	for d := n; d >= 1; d-- {
		s.towers[TowerA] = append(s.towers[TowerA], d)
	}
	return s, nil
}

// NewGameStateFrom rebuilds a GameState from a Snapshot.
//
// The snapshot must describe a legal position: every tower ordered with
// smaller disks above larger ones, and the disks across all towers being
// exactly 1..n for some n in range.
func NewGameStateFrom(snap Snapshot) (*GameState, error) {
	n := len(snap.A) + len(snap.B) + len(snap.C)
	if n < 1 || n > MaxDisks {
		return nil, fmt.Errorf("%w: %d (supported 1-%d)", ErrInvalidDiskCount, n, MaxDisks)
	}
	seen := make([]bool, n+1)
	s := &GameState{disks: n}
	for _, id := range Towers {
		topFirst := snap.Tower(id)
		for i, d := range topFirst {
			if d < 1 || d > n || seen[d] {
				return nil, fmt.Errorf("%w: disk %d on tower %s", ErrCorruptState, d, id)
			}
			seen[d] = true
			if i > 0 && topFirst[i-1] > d {
				return nil, fmt.Errorf("%w: disk %d above disk %d on tower %s",
					ErrCorruptState, topFirst[i-1], d, id)
			}
		}
		bottomFirst := slices.Clone(topFirst)
		slices.Reverse(bottomFirst)
		s.towers[id] = bottomFirst
	}
	return s, nil
}

// Disks returns the fixed disk count n.
func (s *GameState) Disks() int {
	return s.disks
}

// Height returns the number of disks on a tower.
func (s *GameState) Height(id TowerID) int {
	return len(s.towers[id])
}

// Top returns the top disk of a tower, or false if the tower is empty.
func (s *GameState) Top(id TowerID) (int, bool) {
	t := s.towers[id]
	if len(t) == 0 {
		return 0, false
	}
	return t[len(t)-1], true
}

// Apply moves the top disk of m.From onto m.To.
//
// The move is validated again before mutation. An illegal move returns the
// same *InvalidMoveError Validate would and leaves the state untouched.
func (s *GameState) Apply(m Move) error {
	if err := Validate(s, m); err != nil {
		return err
	}
	src := s.towers[m.From]
	disk := src[len(src)-1]
	s.towers[m.From] = src[:len(src)-1]
	s.towers[m.To] = append(s.towers[m.To], disk)
	return nil
}

// IsSolved reports whether every disk sits on tower C.
//
// Apply keeps each tower ordered, so a full tower C is always in order.
func (s *GameState) IsSolved() bool {
	return len(s.towers[TowerA]) == 0 &&
		len(s.towers[TowerB]) == 0 &&
		len(s.towers[TowerC]) == s.disks
}

// Clone returns an independent copy of the state.
func (s *GameState) Clone() *GameState {
	c := &GameState{disks: s.disks}
	for i := range s.towers {
		c.towers[i] = slices.Clone(s.towers[i])
	}
	return c
}

// Snapshot returns an immutable, top-first copy of the towers.
func (s *GameState) Snapshot() Snapshot {
	return Snapshot{
		A: topFirst(s.towers[TowerA]),
		B: topFirst(s.towers[TowerB]),
		C: topFirst(s.towers[TowerC]),
	}
}

// String renders the state as "A:[1 2 3] B:[] C:[]" (top first).
func (s *GameState) String() string {
	return s.Snapshot().String()
}

func topFirst(bottomFirst []int) []int {
	out := make([]int, len(bottomFirst))
	for i, d := range bottomFirst {
		out[len(bottomFirst)-1-i] = d
	}
	return out
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is a copy of the towers with disks listed top first.
//
// It is the exchange format between the engine and everything outside it:
// move records, prompts, exported results and scripted players.
type Snapshot struct {
	A []int `json:"A"`
	B []int `json:"B"`
	C []int `json:"C"`
}

// Tower returns the disks on one tower, top first.
func (s Snapshot) Tower(id TowerID) []int {
	switch id {
	case TowerA:
		return s.A
	case TowerB:
		return s.B
	case TowerC:
		return s.C
	default:
		return nil
	}
}

// Equal reports whether two snapshots describe the same position.
func (s Snapshot) Equal(o Snapshot) bool {
	return slices.Equal(s.A, o.A) && slices.Equal(s.B, o.B) && slices.Equal(s.C, o.C)
}

// String renders "A:[1 2] B:[3] C:[]".
func (s Snapshot) String() string {
	return fmt.Sprintf("A:%v B:%v C:%v", s.A, s.B, s.C)
}
