// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/ui/styles"
)

// =============================================================================
// THINKING SPINNER
// =============================================================================

// Thinking animates every pending reply with one shared spinner.
type Thinking struct {
	spinner   spinner.Model
	frame     int
	active    bool
	startTime time.Time
}

// NewThinking creates an idle spinner.
func NewThinking(theme *styles.Theme) Thinking {
	s := spinner.New(spinner.WithSpinner(styles.ThinkingSpinner.Bubble()))
	if theme != nil {
		s.Style = theme.Spinner
	}
	return Thinking{spinner: s}
}

// Start begins ticking if not already running.
func (t *Thinking) Start() tea.Cmd {
	if t.active {
		return nil
	}
	t.active = true
	t.startTime = time.Now()
	return t.spinner.Tick
}

// Tick returns the command that keeps a running spinner ticking, or nil
// when idle.
func (t Thinking) Tick() tea.Cmd {
	if !t.active {
		return nil
	}
	return t.spinner.Tick
}

// Stop halts ticking after the current frame.
func (t *Thinking) Stop() {
	t.active = false
}

// IsActive returns whether the spinner is running.
func (t *Thinking) IsActive() bool {
	return t.active
}

// Elapsed returns the time since Start.
func (t *Thinking) Elapsed() time.Duration {
	if !t.active {
		return 0
	}
	return time.Since(t.startTime)
}

// Update advances the frame on the spinner's own tick messages.
func (t Thinking) Update(msg tea.Msg) (Thinking, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	if cmd != nil {
		t.frame++
	}
	return t, cmd
}

// Frame returns the unstyled current frame for MountOptions.SpinnerFrame.
func (t Thinking) Frame() string {
	return styles.ThinkingSpinner.Frame(t.frame)
}
