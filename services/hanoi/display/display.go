// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package display renders Towers of Hanoi positions as ASCII art.
//
// Output looks like:
//
//	   [*]        |          |
//	  [***]       |          |
//	 [*****]      |          |
//	=========  =========  =========
//	 Tower A    Tower B    Tower C
//
// Renderers return strings; printing is left to the caller so the same
// output can go to a terminal, a log or a test assertion.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/hanoibench/services/hanoi"
)

const (
	pole      = "|"
	towerGap  = "  "
	minColumn = 7
)

var (
	diskStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")).Bold(true)
	poleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	baseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16858E"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
)

// Renderer draws positions for a fixed disk count.
type Renderer struct {
	disks  int
	column int
	styled bool
}

// New returns a Renderer sized for n disks.
//
// When styled is false the output contains no ANSI escapes.
func New(n int, styled bool) *Renderer {
	return &Renderer{
		disks:  n,
		column: max(minColumn, n*2+3),
		styled: styled,
	}
}

// Width is the total character width of a rendered frame.
func (r *Renderer) Width() int {
	return r.column*3 + len(towerGap)*2
}

// Disk returns the ASCII form of a disk: "[*]" for 1, "[***]" for 2, and
// so on; 0 is an empty pole.
func Disk(size int) string {
	if size <= 0 {
		return pole
	}
	return "[" + strings.Repeat("*", size*2-1) + "]"
}

// Towers renders a position with bases and labels.
func (r *Renderer) Towers(snap hanoi.Snapshot) string {
	height := r.disks
	for _, id := range hanoi.Towers {
		height = max(height, len(snap.Tower(id)))
	}
	height++

	var b strings.Builder
	for level := height - 1; level >= 0; level-- {
		parts := make([]string, 0, 3)
		for _, id := range hanoi.Towers {
			disks := snap.Tower(id)
			// disks is top first; level counts up from the bottom.
			idx := len(disks) - 1 - level
			if idx >= 0 && idx < len(disks) {
				parts = append(parts, r.paint(diskStyle, center(Disk(disks[idx]), r.column)))
			} else {
				parts = append(parts, r.paint(poleStyle, center(pole, r.column)))
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, towerGap), " "))
		b.WriteByte('\n')
	}

	bases := make([]string, 3)
	labels := make([]string, 3)
	for i, id := range hanoi.Towers {
		bases[i] = r.paint(baseStyle, strings.Repeat("=", r.column))
		labels[i] = center("Tower "+id.String(), r.column)
	}
	b.WriteString(strings.Join(bases, towerGap))
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(strings.Join(labels, towerGap), " "))
	b.WriteByte('\n')
	return b.String()
}

// Frame renders a titled position, as shown after each move.
func (r *Renderer) Frame(snap hanoi.Snapshot, moveCount int, last *hanoi.Move) string {
	rule := strings.Repeat("=", r.Width())
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(r.paint(titleStyle, center(fmt.Sprintf("TOWER OF HANOI - Move #%d", moveCount), r.Width())) + "\n")
	if last != nil {
		b.WriteString(center(fmt.Sprintf("Moved from Tower %s to Tower %s", last.From, last.To), r.Width()) + "\n")
	}
	b.WriteString(rule + "\n\n")
	b.WriteString(r.Towers(snap))
	return b.String()
}

// Welcome renders the banner and rules shown before a run.
func (r *Renderer) Welcome() string {
	rule := strings.Repeat("=", r.Width())
	lines := []string{
		rule,
		r.paint(titleStyle, center("TOWERS OF HANOI", r.Width())),
		rule,
		"",
		"Rules:",
		"1. Move all disks from Tower A to Tower C",
		"2. Only one disk can be moved at a time",
		"3. A larger disk cannot be placed on a smaller disk",
		"",
	}
	return strings.Join(lines, "\n") + "\n"
}

// Completion renders the banner shown when the puzzle is solved.
func (r *Renderer) Completion(movesUsed, optimal int) string {
	rule := strings.Repeat("*", r.Width())
	lines := []string{
		rule,
		r.paint(okStyle, center("PUZZLE SOLVED!", r.Width())),
		center(fmt.Sprintf("Moves used: %d", movesUsed), r.Width()),
		center(fmt.Sprintf("Optimal moves: %d", optimal), r.Width()),
		rule,
	}
	return strings.Join(lines, "\n") + "\n"
}

// Report renders the final result block for a graded run.
func (r *Renderer) Report(rep hanoi.Report) string {
	status := rep.Outcome.String()
	if rep.Outcome.Succeeded() {
		status = r.paint(okStyle, status)
	} else {
		status = r.paint(failStyle, status)
	}

	efficiency := "N/A (game not completed)"
	optimal := "N/A"
	if rep.HasEfficiency {
		efficiency = fmt.Sprintf("%.1f%%", hanoi.Round1(rep.Efficiency))
		optimal = yesNo(!rep.ExceededOptimal())
	}
	accuracy := "N/A"
	if rep.HasAccuracy {
		accuracy = fmt.Sprintf("%.1f%%", hanoi.Round1(rep.Accuracy))
	}

	rows := [][2]string{
		{"Disks", fmt.Sprintf("%d", rep.DiskCount)},
		{"Status", status},
		{"Success", yesNo(rep.Outcome.Succeeded())},
		{"Moves used", fmt.Sprintf("%d", rep.MovesUsed)},
		{"Optimal moves", fmt.Sprintf("%d", rep.MinimumMoves)},
		{"Max budget", fmt.Sprintf("%d", rep.Budget)},
		{"Efficiency", efficiency},
		{"Optimal", optimal},
		{"Accuracy", accuracy},
		{"Budget exceeded", yesNo(rep.ExceededBudget())},
	}

	var b strings.Builder
	rule := strings.Repeat("=", r.Width())
	b.WriteString(rule + "\n")
	b.WriteString(r.paint(titleStyle, "TEST RESULTS") + "\n")
	b.WriteString(rule + "\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-16s %s\n", row[0]+":", row[1]))
	}
	b.WriteString(r.paint(mutedStyle, "Accuracy compares against the single canonical A->C path.") + "\n")
	return b.String()
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
