// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/hanoi"
)

var when = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func solvedResult() *evaluator.Result {
	rec := hanoi.MoveRecord{
		Turn:      1,
		Move:      hanoi.Move{From: hanoi.TowerA, To: hanoi.TowerC},
		Valid:     true,
		Reasoning: "only move",
		Before:    hanoi.Snapshot{A: []int{1}, B: []int{}, C: []int{}},
		After:     hanoi.Snapshot{A: []int{}, B: []int{}, C: []int{1}},
	}
	records := []hanoi.MoveRecord{rec}
	return &evaluator.Result{
		RunID:       "run-1",
		Player:      "mock:optimal",
		DiskCount:   1,
		Report:      hanoi.Assess(1, records, true, false),
		Termination: evaluator.TerminationSolved,
		Records:     records,
		Final:       rec.After,
		StartedAt:   when,
		FinishedAt:  when.Add(1500 * time.Millisecond),
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "hanoi_test_3disks_20250314_150926.json", FileName(3, when))
}

func TestNewDocument_Solved(t *testing.T) {
	doc := NewDocument(solvedResult(), when)

	assert.Equal(t, "2025-03-14", doc.ExportInfo.Date)
	assert.Equal(t, "15:09:26", doc.ExportInfo.Time)
	assert.Equal(t, TestType, doc.ExportInfo.TestType)
	assert.True(t, doc.Results.Success)
	assert.Equal(t, hanoi.OptimalSuccess, doc.Results.Status)
	require.NotNil(t, doc.Results.EfficiencyPercent)
	assert.Equal(t, 100.0, *doc.Results.EfficiencyPercent)
	assert.Equal(t, 2, doc.Results.MaxMoves)
	assert.InDelta(t, 1.5, doc.Results.DurationSeconds, 0.001)
}

func TestNewDocument_FailureHasNullEfficiency(t *testing.T) {
	res := &evaluator.Result{
		RunID:       "run-2",
		DiskCount:   3,
		Report:      hanoi.Assess(3, nil, false, false),
		Termination: evaluator.TerminationPlayerError,
		Err:         os.ErrDeadlineExceeded,
	}
	doc := NewDocument(res, when)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "results")
	var results map[string]any
	require.NoError(t, json.Unmarshal(raw["results"], &results))
	assert.Contains(t, results, "efficiency_percent")
	assert.Nil(t, results["efficiency_percent"])
	assert.Equal(t, "FAILURE", results["status"])
	assert.Equal(t, "player_error", results["termination"])
	assert.Equal(t, []any{}, results["move_details"])
	assert.NotEmpty(t, results["error"])
}

func TestStore_SaveLoadList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	store := NewStore(dir)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list, "missing dir lists nothing")

	first, err := store.Save(solvedResult(), when)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hanoi_test_1disks_20250314_150926.json"), first)

	later := solvedResult()
	later.RunID = "run-later"
	_, err = store.Save(later, when.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	doc, err := Load(first)
	require.NoError(t, err)
	assert.Equal(t, "run-1", doc.Results.RunID)
	require.Len(t, doc.Results.MoveDetails, 1)
	assert.Equal(t, hanoi.TowerC, doc.Results.MoveDetails[0].Move.To)
	assert.Equal(t, []int{1}, doc.Results.FinalState.C)

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "run-later", list[0].Results.RunID)
	assert.Equal(t, "run-1", list[1].Results.RunID)
}

func TestStore_ListOrdersByInstant(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	save := func(id string, disks int, at time.Time) {
		t.Helper()
		res := solvedResult()
		res.RunID = id
		res.DiskCount = disks
		_, err := store.Save(res, at)
		require.NoError(t, err)
	}
	// Whole-second and fractional timestamps within one second, plus a later
	// run recorded in a negative offset that sorts first as a string.
	save("whole", 1, when)
	save("half", 2, when.Add(500*time.Millisecond))
	save("offset", 3, when.Add(time.Minute).In(time.FixedZone("EST", -5*60*60)))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	ids := []string{list[0].Results.RunID, list[1].Results.RunID, list[2].Results.RunID}
	assert.Equal(t, []string{"offset", "half", "whole"}, ids)
}

func TestCompareTimestamps(t *testing.T) {
	assert.Negative(t, compareTimestamps("2025-03-14T15:09:26Z", "2025-03-14T15:09:26.5Z"))
	assert.Positive(t, compareTimestamps("2025-03-14T11:00:00-05:00", "2025-03-14T15:09:26Z"))
	assert.Zero(t, compareTimestamps("2025-03-14T10:09:26-05:00", "2025-03-14T15:09:26Z"))
	assert.Negative(t, compareTimestamps("garbage-a", "garbage-b"), "unparsable values compare as strings")
}

func TestStore_ListReportsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	_, err := store.Save(solvedResult(), when)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hanoi_test_9disks_bad.json"), []byte("{"), 0o644))

	list, err := store.List()
	assert.Error(t, err)
	assert.Len(t, list, 1)
}

func TestStore_SaveNil(t *testing.T) {
	_, err := NewStore(t.TempDir()).Save(nil, when)
	assert.ErrorIs(t, err, ErrNilResult)
}
