// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit    key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	ToggleSQL key.Binding
	CopySQL   key.Binding
	ChartMode key.Binding
	SaveChart key.Binding
	Export    key.Binding
	Help      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Quit      key.Binding
	Back      key.Binding

	// Chart mode
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	ResetView key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next answer"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous answer"),
		),
		ToggleSQL: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "show/hide SQL"),
		),
		CopySQL: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy SQL"),
		),
		ChartMode: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "zoom & pan chart"),
		),
		SaveChart: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save chart"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/quit"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "pan right"),
		),
		PanUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "pan up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "pan down"),
		),
		ResetView: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset view"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.FocusNext, k.ToggleSQL, k.Export, k.Help, k.Back}
}

// FullHelp returns all bindings, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.FocusNext, k.FocusPrev, k.PageUp, k.PageDown},
		{k.ToggleSQL, k.CopySQL, k.ChartMode, k.SaveChart, k.Export},
		{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight, k.PanUp, k.PanDown, k.ResetView},
		{k.Help, k.Back, k.Quit},
	}
}

// legendIndex maps "1".."9" to a dataset index.
func legendIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
