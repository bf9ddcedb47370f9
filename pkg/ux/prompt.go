// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive is returned when a prompt is needed but stdin/stdout
// are not a terminal.
var ErrNotInteractive = errors.New("interactive input required but no terminal is attached")

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted by user")

// ParseIntInRange parses s as an integer within [lo, hi].
func ParseIntInRange(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("please enter a valid number")
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("please enter a number between %d and %d", lo, hi)
	}
	return v, nil
}

// AskInt prompts for an integer within [lo, hi], pre-filled with def.
func AskInt(title, description string, lo, hi, def int) (int, error) {
	if !IsInteractive() {
		return 0, ErrNotInteractive
	}
	raw := strconv.Itoa(def)
	err := huh.NewInput().
		Title(title).
		Description(description).
		Value(&raw).
		Validate(func(s string) error {
			_, err := ParseIntInRange(s, lo, hi)
			return err
		}).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, ErrAborted
		}
		return 0, fmt.Errorf("read input: %w", err)
	}
	return ParseIntInRange(raw, lo, hi)
}

// Confirm asks a yes/no question. Aborting the prompt counts as "no".
func Confirm(title, affirmative, negative string) (bool, error) {
	if !IsInteractive() {
		return false, ErrNotInteractive
	}
	ok := true
	err := huh.NewConfirm().
		Title(title).
		Affirmative(affirmative).
		Negative(negative).
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("read input: %w", err)
	}
	return ok, nil
}
