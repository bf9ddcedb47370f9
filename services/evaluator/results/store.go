// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package results exports evaluation runs as JSON files and reads them back.
//
// One file is written per run, named hanoi_test_{n}disks_{YYYYMMDD_HHMMSS}.json.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/AleutianAI/hanoibench/services/evaluator"
	"github.com/AleutianAI/hanoibench/services/hanoi"
)

// TestType tags every export.
const TestType = "AI_reasoning_validation"

const filePrefix = "hanoi_test_"

// ErrNilResult is returned by Save when there is nothing to export.
var ErrNilResult = errors.New("results: nil result")

// Document is the on-disk layout of one export.
type Document struct {
	Timestamp  string     `json:"timestamp"`
	ExportInfo ExportInfo `json:"export_info"`
	Results    RunResults `json:"results"`
}

// ExportInfo describes when and what was exported.
type ExportInfo struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	DiskCount int    `json:"disk_count"`
	TestType  string `json:"test_type"`
}

// RunResults is the graded run.
//
// EfficiencyPercent is null for unsolved runs: efficiency is undefined
// there, not zero.
type RunResults struct {
	RunID             string             `json:"run_id"`
	Player            string             `json:"player"`
	NumDisks          int                `json:"num_disks"`
	Success           bool               `json:"success"`
	Status            hanoi.Outcome      `json:"status"`
	Termination       string             `json:"termination"`
	TotalMoves        int                `json:"total_moves"`
	OptimalMoves      int                `json:"optimal_moves"`
	MaxMoves          int                `json:"max_moves"`
	EfficiencyPercent *float64           `json:"efficiency_percent"`
	AccuracyPercent   *float64           `json:"accuracy_percent"`
	ExceededOptimal   bool               `json:"exceeded_optimal"`
	ExceededBudget    bool               `json:"exceeded_budget"`
	Error             string             `json:"error,omitempty"`
	DurationSeconds   float64            `json:"duration_seconds"`
	FinalState        hanoi.Snapshot     `json:"final_state"`
	MoveDetails       []hanoi.MoveRecord `json:"move_details"`
}

// Summary is one listed export.
type Summary struct {
	Path string
	Document
}

// Store reads and writes exports in one directory.
type Store struct{ dir string }

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// NewDocument converts a run into its export layout, stamped with now.
func NewDocument(res *evaluator.Result, now time.Time) Document {
	rep := res.Report
	doc := Document{
		Timestamp: now.Format(time.RFC3339Nano),
		ExportInfo: ExportInfo{
			Date:      now.Format("2006-01-02"),
			Time:      now.Format("15:04:05"),
			DiskCount: res.DiskCount,
			TestType:  TestType,
		},
		Results: RunResults{
			RunID:           res.RunID,
			Player:          res.Player,
			NumDisks:        res.DiskCount,
			Success:         rep.Outcome.Succeeded(),
			Status:          rep.Outcome,
			Termination:     string(res.Termination),
			TotalMoves:      rep.MovesUsed,
			OptimalMoves:    rep.MinimumMoves,
			MaxMoves:        rep.Budget,
			ExceededOptimal: rep.ExceededOptimal(),
			ExceededBudget:  rep.ExceededBudget(),
			DurationSeconds: res.Duration().Seconds(),
			FinalState:      res.Final,
			MoveDetails:     res.Records,
		},
	}
	if rep.HasEfficiency {
		v := hanoi.Round1(rep.Efficiency)
		doc.Results.EfficiencyPercent = &v
	}
	if rep.HasAccuracy {
		v := hanoi.Round1(rep.Accuracy)
		doc.Results.AccuracyPercent = &v
	}
	if res.Err != nil {
		doc.Results.Error = res.Err.Error()
	}
	if doc.Results.MoveDetails == nil {
		doc.Results.MoveDetails = []hanoi.MoveRecord{}
	}
	return doc
}

// FileName returns the export file name for an n-disk run at now.
func FileName(n int, now time.Time) string {
	return fmt.Sprintf("%s%ddisks_%s.json", filePrefix, n, now.Format("20060102_150405"))
}

// Save exports res and returns the written path.
func (s *Store) Save(res *evaluator.Result, now time.Time) (string, error) {
	if res == nil {
		return "", ErrNilResult
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(s.dir, FileName(res.DiskCount, now))

	data, err := json.MarshalIndent(NewDocument(res, now), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	// Write to a temp file first so a crash never leaves half an export.
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write results: %w", err)
	}
	return target, nil
}

// Load reads one export.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

// List returns every export in the store, newest first. A missing
// directory yields an empty list. Files that fail to parse are skipped and
// reported in the joined error alongside the readable summaries.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Summary
	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, name)
		doc, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, Summary{Path: path, Document: *doc})
	}
	slices.SortStableFunc(out, func(a, b Summary) int {
		return compareTimestamps(b.Timestamp, a.Timestamp)
	})
	return out, errors.Join(errs...)
}

// compareTimestamps orders RFC 3339 timestamps by instant. Values that do
// not parse fall back to plain string order.
func compareTimestamps(a, b string) int {
	ta, erra := time.Parse(time.RFC3339Nano, a)
	tb, errb := time.Parse(time.RFC3339Nano, b)
	if erra != nil || errb != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}
