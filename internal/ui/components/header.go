// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/querychat/internal/ui/styles"
	"github.com/jeranaias/querychat/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Default header text.
const (
	DefaultTitle    = "Sales Data Chatbot"
	DefaultSubtitle = "Ask about your sales data in plain language"
)

// Header is the title bar.
type Header struct {
	Title    string
	Subtitle string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a new Header component with default values
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:    DefaultTitle,
		Subtitle: DefaultSubtitle,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the two-line header.
func (h *Header) View() string {
	width := max(h.Width, 20)
	inner := width - 4

	title := h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, inner))
	lines := []string{title}
	if h.Subtitle != "" && width >= 40 {
		lines = append(lines, h.theme.HeaderSubtitle.Render(util.TruncateWidth(h.Subtitle, inner)))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return h.theme.Header.Width(width).Render(content)
}
