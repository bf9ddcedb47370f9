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
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrEmptySource is returned when the source tower holds no disks.
	ErrEmptySource = errors.New("source tower is empty")

	// ErrSizeViolation is returned when a disk would land on a smaller disk.
	ErrSizeViolation = errors.New("cannot place a larger disk on a smaller disk")

	// ErrSameTower is returned when source and destination are the same tower.
	ErrSameTower = errors.New("source and destination are the same tower")

	// ErrUnknownTower is returned for a tower identifier other than A, B or C.
	ErrUnknownTower = errors.New("unknown tower")

	// ErrInvalidDiskCount is returned when a puzzle is created with an
	// unsupported number of disks.
	ErrInvalidDiskCount = errors.New("invalid disk count")

	// ErrCorruptState is returned when a snapshot violates the tower invariants.
	ErrCorruptState = errors.New("corrupt game state")
)

// InvalidMoveError describes why a move was rejected.
//
// Reason is one of ErrEmptySource, ErrSizeViolation or ErrSameTower, so
// callers can branch with errors.Is:
//
//	if errors.Is(err, hanoi.ErrSizeViolation) { ... }
type InvalidMoveError struct {
	// Reason is the sentinel error for the rule that was broken.
	Reason error

	// Move is the rejected move.
	Move Move

	// Disk is the top disk of the source tower (0 if empty).
	Disk int

	// Onto is the top disk of the destination tower (0 if empty).
	Onto int
}

// Error returns a human-readable explanation of the rejected move.
func (e *InvalidMoveError) Error() string {
	switch e.Reason {
	case ErrEmptySource:
		return fmt.Sprintf("invalid move %s: tower %s is empty", e.Move, e.Move.From)
	case ErrSizeViolation:
		return fmt.Sprintf("invalid move %s: cannot place disk %d on top of disk %d", e.Move, e.Disk, e.Onto)
	case ErrSameTower:
		return fmt.Sprintf("invalid move %s: cannot move from tower %s to itself", e.Move, e.Move.From)
	default:
		return fmt.Sprintf("invalid move %s: %v", e.Move, e.Reason)
	}
}

// Unwrap returns the rule that was broken.
func (e *InvalidMoveError) Unwrap() error {
	return e.Reason
}

// ReasonCode returns a stable snake_case code for exports and metrics.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySource):
		return "empty_source"
	case errors.Is(err, ErrSizeViolation):
		return "size_violation"
	case errors.Is(err, ErrSameTower):
		return "same_tower"
	case errors.Is(err, ErrUnknownTower):
		return "unknown_tower"
	default:
		return "invalid"
	}
}

// Validate reports whether m is legal in s.
//
// Validate has no side effects; apply the move separately with
// GameState.Apply.
//
// # Outputs
//
//   - nil when the move is legal
//   - *InvalidMoveError wrapping ErrSameTower, ErrEmptySource or
//     ErrSizeViolation otherwise
//   - an error wrapping ErrUnknownTower for out-of-range identifiers
func Validate(s *GameState, m Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return fmt.Errorf("%w: %s -> %s", ErrUnknownTower, m.From, m.To)
	}
	if m.From == m.To {
		return &InvalidMoveError{Reason: ErrSameTower, Move: m}
	}

	disk, ok := s.Top(m.From)
	if !ok {
		return &InvalidMoveError{Reason: ErrEmptySource, Move: m}
	}
	if onto, ok := s.Top(m.To); ok && onto < disk {
		return &InvalidMoveError{Reason: ErrSizeViolation, Move: m, Disk: disk, Onto: onto}
	}
	return nil
}
