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
	"fmt"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 100 * time.Millisecond

// Spinner marks a wait on something slow, such as a model call, with an
// animated line and the seconds elapsed so far.
//
// In machine mode the label is printed once as a PROGRESS line. When stdout
// is not a terminal nothing is drawn. A stopped spinner can be started again.
type Spinner struct {
	mu      sync.Mutex
	label   string
	started time.Time
	running bool
	quit    chan struct{}
	exited  chan struct{}
}

// NewSpinner returns a stopped spinner showing label.
func NewSpinner(label string) *Spinner {
	return &Spinner{label: label}
}

// Start shows the spinner. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()

	if GetPersonality().Level == PersonalityMachine {
		printOut("PROGRESS: %s\n", s.label)
		return
	}
	if !isTerminal() {
		return
	}
	s.quit = make(chan struct{})
	s.exited = make(chan struct{})
	go animate(s.label, s.started, s.quit, s.exited)
}

func animate(label string, started time.Time, quit <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-quit:
			printOut("\r\033[K")
			return
		case now := <-ticker.C:
			glyph := Styles.Highlight.Render(spinnerFrames[frame%len(spinnerFrames)])
			elapsed := Styles.Muted.Render(fmt.Sprintf("%.1fs", now.Sub(started).Seconds()))
			printOut("\r%s %s %s", glyph, label, elapsed)
		}
	}
}

// Stop clears the spinner line and returns how long the spinner ran.
// Stopping a spinner that is not running returns 0.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return 0
	}
	s.running = false
	elapsed := time.Since(s.started)
	quit, exited := s.quit, s.exited
	s.quit, s.exited = nil, nil
	s.mu.Unlock()

	if quit != nil {
		close(quit)
		<-exited
	}
	return elapsed
}

// Running reports whether the spinner is shown.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
