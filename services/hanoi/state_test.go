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
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameState_AllDisksOnA(t *testing.T) {
	s, err := NewGameState(3)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Disks())
	assert.Equal(t, Snapshot{A: []int{1, 2, 3}, B: []int{}, C: []int{}}, s.Snapshot())
	top, ok := s.Top(TowerA)
	assert.True(t, ok)
	assert.Equal(t, 1, top)
	assert.False(t, s.IsSolved())
}

func TestNewGameState_InvalidDiskCount(t *testing.T) {
	for _, n := range []int{-1, 0, MaxDisks + 1} {
		_, err := NewGameState(n)
		assert.ErrorIs(t, err, ErrInvalidDiskCount, "n=%d", n)
	}
}

func TestApply_MovesTopDisk(t *testing.T) {
	s, err := NewGameState(2)
	require.NoError(t, err)

	require.NoError(t, s.Apply(Move{From: TowerA, To: TowerB}))
	assert.Equal(t, Snapshot{A: []int{2}, B: []int{1}, C: []int{}}, s.Snapshot())
}

func TestApply_InvalidLeavesStateUntouched(t *testing.T) {
	s, err := NewGameStateFrom(Snapshot{A: []int{3}, B: []int{1}, C: []int{2}})
	require.NoError(t, err)
	before := s.Snapshot()

	err = s.Apply(Move{From: TowerA, To: TowerB})
	assert.ErrorIs(t, err, ErrSizeViolation)
	assert.True(t, before.Equal(s.Snapshot()))
}

func TestIsSolved(t *testing.T) {
	s, err := NewGameStateFrom(Snapshot{C: []int{1, 2, 3}})
	require.NoError(t, err)
	assert.True(t, s.IsSolved())

	s, err = NewGameStateFrom(Snapshot{B: []int{1, 2, 3}})
	require.NoError(t, err)
	assert.False(t, s.IsSolved())
}

func TestNewGameStateFrom_RejectsCorruptSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want error
	}{
		{"empty", Snapshot{}, ErrInvalidDiskCount},
		{"duplicate disk", Snapshot{A: []int{1, 1}}, ErrCorruptState},
		{"gap in disks", Snapshot{A: []int{1, 3}}, ErrCorruptState},
		{"larger above smaller", Snapshot{A: []int{2, 1}}, ErrCorruptState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGameStateFrom(tt.snap)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	s, err := NewGameState(3)
	require.NoError(t, err)
	c := s.Clone()

	require.NoError(t, c.Apply(Move{From: TowerA, To: TowerC}))
	assert.Equal(t, 3, s.Height(TowerA))
	assert.Equal(t, 2, c.Height(TowerA))
}

func TestParseTowerID(t *testing.T) {
	tests := map[string]TowerID{"A": TowerA, "b": TowerB, " C ": TowerC, "Tower b": TowerB}
	for in, want := range tests {
		got, err := ParseTowerID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTowerID("D")
	assert.ErrorIs(t, err, ErrUnknownTower)
}

func TestMove_JSONUsesLetters(t *testing.T) {
	data, err := json.Marshal(Move{From: TowerA, To: TowerC})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_tower":"A","destination_tower":"C"}`, string(data))

	var m Move
	require.NoError(t, json.Unmarshal([]byte(`{"source_tower":"b","destination_tower":"A"}`), &m))
	assert.Equal(t, Move{From: TowerB, To: TowerA}, m)

	err = json.Unmarshal([]byte(`{"source_tower":"Q","destination_tower":"A"}`), &m)
	assert.True(t, errors.Is(err, ErrUnknownTower))
}

func TestNewMove_RejectsSameTower(t *testing.T) {
	_, err := NewMove(TowerB, TowerB)
	assert.ErrorIs(t, err, ErrSameTower)

	m, err := NewMove(TowerB, TowerC)
	require.NoError(t, err)
	assert.Equal(t, "B -> C", m.String())
}
