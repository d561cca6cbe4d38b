// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/components"
)

// =============================================================================
// MOUNT CACHE
// =============================================================================

// mountKey is everything a mounted turn depends on besides the turn itself.
// A turn is re-mounted only when its key changes.
type mountKey struct {
	width      int
	focused    bool
	expanded   bool
	active     bool
	timestamps bool
	frame      string
	chartRev   int
}

type mounted struct {
	key mountKey
	out string
}

// span is where a turn sits in the viewport content.
type span struct {
	id     string
	start  int
	height int
}

// renderOptions returns the tree options for a turn.
func (m Model) renderOptions(id string) render.Options {
	return render.Options{
		SQLExpanded:   m.SQLExpanded(id),
		ChartFilename: m.cfg.Chart.Filename,
	}
}

// mountTurn returns the terminal text for t, reusing the cached mount when
// nothing it depends on changed.
func (m *Model) mountTurn(t *model.Turn) string {
	key := mountKey{
		width:      m.viewport.Width,
		focused:    t.ID == m.focusID,
		expanded:   m.SQLExpanded(t.ID),
		active:     m.chartMode && t.ID == m.focusID,
		timestamps: m.cfg.UI.ShowTimestamps,
		chartRev:   m.chartRev[t.ID],
	}
	if t.Pending {
		key.frame = m.thinking.Frame()
	}
	if c, ok := m.mounts[t.ID]; ok && c.key == key {
		return c.out
	}

	tree := render.Turn(t, m.renderOptions(t.ID))
	opts := components.MountOptions{
		Width:          key.width,
		Theme:          m.theme,
		Focused:        key.focused,
		ShowTimestamps: key.timestamps,
		Timestamp:      t.Timestamp,
		SpinnerFrame:   key.frame,
		ChartHeight:    m.cfg.Chart.Height,
		ChartActive:    key.active,
	}
	if b, ok := tree.Chart(); ok {
		opts.Chart = m.chartFor(t.ID, b)
	}

	out := components.Mount(tree, opts)
	m.mounts[t.ID] = mounted{key: key, out: out}
	return out
}

// refresh rebuilds the viewport content and keeps it pinned to the end
// when the user has not scrolled away.
func (m *Model) refresh() {
	turns := m.store.Turns()

	parts := make([]string, 0, len(turns)+1)
	spans := make([]span, 0, len(turns))
	line := 0
	if len(turns) == 0 {
		welcome := components.Mount(render.Payload(&model.Payload{Answer: WelcomeText}, render.Options{}),
			components.MountOptions{Width: m.viewport.Width, Theme: m.theme})
		parts = append(parts, welcome)
	}

	live := make(map[string]bool, len(turns))
	for _, t := range turns {
		live[t.ID] = true
		out := m.mountTurn(t)
		h := lipgloss.Height(out)
		spans = append(spans, span{id: t.ID, start: line, height: h})
		parts = append(parts, out)
		line += h
	}
	for id := range m.mounts {
		if !live[id] {
			delete(m.mounts, id)
		}
	}
	m.spans = spans

	m.viewport.SetContent(strings.Join(parts, "\n"))
	if m.store.AtEnd() {
		m.viewport.GotoBottom()
	}

	m.status.Pending = m.store.PendingCount()
	m.status.BackendURL = m.ctrl.BackendURL()
	m.status.Health = m.health
	m.status.Notice = m.notice
	if m.chartMode {
		m.status.Shortcuts = components.ChartShortcuts
	} else {
		m.status.Shortcuts = components.DefaultShortcuts
	}
}

// scrollToFocus brings the focused turn into view.
func (m *Model) scrollToFocus() {
	for _, s := range m.spans {
		if s.id != m.focusID {
			continue
		}
		if s.start < m.viewport.YOffset || s.start+s.height > m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(s.start)
			m.store.Unpin()
		}
		return
	}
}

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header + messages (viewport) + input + status bar.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.header.View()
	status := m.status.View()

	if m.showHelp {
		body := m.theme.HelpBox.Width(max(m.width-2, 20)).Render(m.helpView)
		return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
	}

	input := m.theme.InputContainer.Width(max(m.width-2, 10)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, status)
}

// layout sizes the viewport to what header, input and status bar leave.
func (m *Model) layout() {
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)

	// Input area is a border line plus the input line.
	const inputHeight = 2
	reserved := lipgloss.Height(m.header.View()) + inputHeight + lipgloss.Height(m.status.View())

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)
	m.input.Width = max(m.width-4-len(m.input.Prompt), 10)

	if m.showHelp {
		m.helpView = components.RenderHelp(m.theme, m.width)
	}
}
