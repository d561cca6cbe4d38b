// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/ui/styles"
	"github.com/jeranaias/querychat/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is one key hint.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are shown when nothing more specific applies.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"tab", "focus"},
	{"ctrl+o", "sql"},
	{"ctrl+e", "export"},
	{"?", "help"},
	{"esc", "quit"},
}

// ChartShortcuts replace the defaults in chart-interaction mode.
var ChartShortcuts = []Shortcut{
	{"+/-", "zoom"},
	{"←/→", "pan"},
	{"↑/↓", "shift y"},
	{"0", "reset"},
	{"ctrl+g", "done"},
}

// StatusBar is the bottom line: backend, health and key hints.
type StatusBar struct {
	BackendURL string
	Health     backend.HealthState
	Pending    int
	Notice     string
	Shortcuts  []Shortcut
	Width      int
	theme      *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Health:    backend.HealthUnknown,
		Shortcuts: DefaultShortcuts,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// HealthIndicator returns the shape and word for a health state.
func HealthIndicator(state backend.HealthState) string {
	switch state {
	case backend.HealthOK:
		return styles.StatusIndicators.Online + " " + state.String()
	case backend.HealthDown:
		return styles.StatusIndicators.Offline + " " + state.String()
	default:
		return styles.StatusIndicators.Checking + " " + state.String()
	}
}

// View renders the status bar. The left side (health and URL) wins over the
// key hints when space runs out.
func (s *StatusBar) View() string {
	t := s.theme
	width := max(s.Width, 20)

	var health string
	switch s.Health {
	case backend.HealthOK:
		health = t.HealthOnline.Render(HealthIndicator(s.Health))
	case backend.HealthDown:
		health = t.HealthOffline.Render(HealthIndicator(s.Health))
	default:
		health = t.HealthChecking.Render(HealthIndicator(s.Health))
	}

	left := []string{health}
	if s.BackendURL != "" {
		left = append(left, t.ShortcutDesc.Render(s.BackendURL))
	}
	if s.Pending > 0 {
		left = append(left, t.HealthChecking.Render(fmtNumber(s.Pending)+" pending"))
	}
	if s.Notice != "" {
		left = append(left, t.Notice.Render(s.Notice))
	}
	leftStr := strings.Join(left, "  ")

	// Two cells of bar padding on each side.
	room := width - 2 - lipgloss.Width(leftStr) - 2
	var hints []string
	for _, sc := range s.Shortcuts {
		h := t.ShortcutKey.Render(sc.Key) + " " + t.ShortcutDesc.Render(sc.Desc)
		next := lipgloss.Width(strings.Join(append(hints, h), "  "))
		if next > room {
			break
		}
		hints = append(hints, h)
	}
	rightStr := strings.Join(hints, "  ")

	gap := max(width-2-lipgloss.Width(leftStr)-lipgloss.Width(rightStr), 1)
	line := leftStr + strings.Repeat(" ", gap) + rightStr
	if lipgloss.Width(line) > width-2 {
		line = util.TruncateWidth(leftStr, width-2)
	}
	return t.StatusBar.Width(width).Render(line)
}
