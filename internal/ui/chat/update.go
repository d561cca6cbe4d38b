// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/export"
	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/components"
)

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case HealthMsg:
		// A probe of a URL that was swapped out since is stale.
		if msg.Result.URL != m.client.BaseURL() {
			return m, nil
		}
		m.health = msg.Result.State
		m.refresh()
		return m, nil

	case ReplyMsg:
		return m.handleReply(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.thinking, cmd = m.thinking.Update(msg)
		if m.store.PendingCount() > 0 {
			m.refresh()
		}
		return m, cmd

	case watcherStartedMsg:
		if msg.err != nil {
			log.Printf("WARNING: CONFIG_WATCH | path=%s err=%v", m.configPath, msg.err)
			return m, nil
		}
		m.watcher = msg.watcher
		m.reloads = msg.reloads
		return m, waitForReload(m.reloads)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			log.Printf("WARNING: EXPORT_FAILED | err=%v", msg.Err)
			return m, m.setNotice("[FAIL] Export failed: " + msg.Err.Error())
		}
		return m, m.setNotice("[OK] Exported to " + msg.Path)

	case ChartSavedMsg:
		if msg.Err != nil {
			return m, m.setNotice("[FAIL] Chart not saved: " + msg.Err.Error())
		}
		return m, m.setNotice("[OK] Chart saved to " + msg.Path)

	case CopiedMsg:
		if msg.Err != nil {
			return m, m.setNotice("[FAIL] Clipboard unavailable")
		}
		return m, m.setNotice(fmt.Sprintf("[OK] Copied %d characters of SQL", msg.Chars))

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
			m.status.Notice = ""
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys

	if key.Matches(msg, k.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, k.Help) || key.Matches(msg, k.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	if key.Matches(msg, k.Back) {
		switch {
		case m.chartMode:
			m.chartMode = false
		case m.focusID != "":
			m.setFocus("")
		default:
			return m, tea.Quit
		}
		m.refresh()
		return m, nil
	}

	if m.chartMode {
		if key.Matches(msg, k.ChartMode) {
			m.chartMode = false
			m.dragging = false
			m.refresh()
			return m, nil
		}
		if m.handleChartKey(msg) {
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, k.Submit):
		if m.focusID != "" {
			m.setFocus("")
			m.refresh()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, k.FocusNext):
		m.moveFocus(1)

	case key.Matches(msg, k.FocusPrev):
		m.moveFocus(-1)

	case key.Matches(msg, k.ToggleSQL):
		id := m.target(func(t *model.Turn) bool { return t.Payload.HasSQL() })
		if id == "" {
			return m, m.setNotice("No SQL to show")
		}
		m.expanded[id] = !m.SQLExpanded(id)
		m.refresh()

	case key.Matches(msg, k.CopySQL):
		id := m.target(func(t *model.Turn) bool { return t.Payload.HasSQL() })
		if id == "" {
			return m, m.setNotice("No SQL to copy")
		}
		t, _ := m.store.Get(id)
		cmd = CopyCmd(t.Payload.SQL)

	case key.Matches(msg, k.ChartMode):
		cmd = m.enterChartMode()

	case key.Matches(msg, k.SaveChart):
		id := m.target(func(t *model.Turn) bool { return t.Payload.HasChart() })
		c := m.charts[id]
		if c == nil {
			return m, m.setNotice("No chart to save")
		}
		cmd = SaveChartCmd(c.Clone(), m.cfg.Export.Dir, m.cfg.Chart.Filename)

	case key.Matches(msg, k.Export):
		cmd = m.exportCmd()

	case key.Matches(msg, k.PageUp):
		m.viewport.ViewUp()
		m.syncPin()

	case key.Matches(msg, k.PageDown):
		m.viewport.ViewDown()
		m.syncPin()

	case key.Matches(msg, k.Help) && (m.focusID != "" || m.input.Value() == ""):
		m.showHelp = true
		m.helpView = components.RenderHelp(m.theme, m.width)

	case m.focusID != "":
		// A focused answer takes the legend keys; everything else is ignored
		// until focus returns to the input.
		if i, ok := legendIndex(msg.String()); ok {
			if c := m.charts[m.focusID]; c != nil && i < c.DatasetCount() {
				c.Toggle(i)
				m.chartChanged(m.focusID)
				m.refresh()
			}
		}

	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// submit hands the input to the controller and starts the backend call.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := m.input.Value()
	p, ok := m.ctrl.Begin(raw)
	if !ok {
		if strings.TrimSpace(raw) != "" && m.ctrl.Busy() {
			return m, m.setNotice("Waiting for the previous answer")
		}
		return m, nil
	}

	m.input.Reset()
	m.store.PinToEnd()
	cmds := []tea.Cmd{AskCmd(m.ctx, m.ctrl, p), m.thinking.Start()}
	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.ctrl.Complete(msg.Pending, msg.Outcome)
	if m.store.PendingCount() == 0 {
		m.thinking.Stop()
	}
	m.refresh()
	return m, nil
}

// =============================================================================
// FOCUS
// =============================================================================

// focusable returns the bot turns focus can move between, oldest first.
func (m Model) focusable() []string {
	var ids []string
	for _, t := range m.store.Turns() {
		if t.Role == model.RoleBot && !t.Pending {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// moveFocus cycles through the answers and the input, which sits after the
// newest answer.
func (m *Model) moveFocus(dir int) {
	ring := append(m.focusable(), "")
	cur := len(ring) - 1
	for i, id := range ring {
		if id == m.focusID {
			cur = i
			break
		}
	}
	next := (cur + dir + len(ring)) % len(ring)
	m.setFocus(ring[next])
	m.refresh()
	m.scrollToFocus()
}

func (m *Model) setFocus(id string) {
	m.focusID = id
	m.chartMode = false
	m.dragging = false
	if id == "" {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// target returns the turn an action applies to: the focused answer when it
// qualifies, otherwise the newest answer that does.
func (m Model) target(ok func(*model.Turn) bool) string {
	if m.focusID != "" {
		if t, found := m.store.Get(m.focusID); found && ok(t) {
			return t.ID
		}
	}
	turns := m.store.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if t := turns[i]; t.Role == model.RoleBot && !t.Pending && ok(t) {
			return t.ID
		}
	}
	return ""
}

func (m *Model) enterChartMode() tea.Cmd {
	id := m.target(func(t *model.Turn) bool { return t.Payload.HasChart() })
	c := m.charts[id]
	switch {
	case c == nil:
		return m.setNotice("No chart to explore")
	case !c.Interactive():
		return m.setNotice("Pie charts cannot be zoomed")
	}
	m.setFocus(id)
	m.chartMode = true
	m.refresh()
	m.scrollToFocus()
	return nil
}

// =============================================================================
// MOUSE AND SCROLLING
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		return m, nil
	}
	if m.chartMode {
		m.handleChartMouse(msg)
		m.refresh()
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.viewport.LineUp(3)
	case tea.MouseWheelDown:
		m.viewport.LineDown(3)
	default:
		return m, nil
	}
	m.syncPin()
	return m, nil
}

// syncPin keeps following new turns only while the view is at the bottom.
func (m *Model) syncPin() {
	if m.viewport.AtBottom() {
		m.store.PinToEnd()
	} else {
		m.store.Unpin()
	}
}

// =============================================================================
// CONFIG, EXPORT AND NOTICES
// =============================================================================

func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForReload(m.reloads)}
	if msg.Err != nil || msg.Config == nil {
		log.Printf("WARNING: CONFIG_RELOAD_REJECTED | err=%v", msg.Err)
		cmds = append(cmds, m.setNotice("[FAIL] Config reload failed; keeping current settings"))
		return m, tea.Batch(cmds...)
	}

	cfg := msg.Config
	if cfg.UI.Locale != m.cfg.UI.Locale {
		if err := format.SetLocale(cfg.UI.Locale); err != nil {
			log.Printf("WARNING: LOCALE | locale=%s err=%v", cfg.UI.Locale, err)
		}
	}
	m.cfg = cfg
	m.ctrl.SetBlockWhilePending(cfg.UI.BlockWhilePending)
	for _, c := range m.charts {
		c.SetExportSize(cfg.Chart.ExportWidth, cfg.Chart.ExportHeight)
	}

	prevURL := m.client.BaseURL()
	m.client.Reconfigure(BackendConfig(cfg))
	if url := m.client.BaseURL(); url != prevURL {
		m.ctrl.SetBackendURL(url)
		m.health = backend.HealthUnknown
		log.Printf("CONFIG_APPLIED | backend_url=%s", url)
		cmds = append(cmds, ProbeCmd(m.ctx, m.client), m.setNotice("Backend switched to "+url))
	}

	m.mounts = make(map[string]mounted)
	m.refresh()
	return m, tea.Batch(cmds...)
}

// exportCmd writes the conversation in the configured format. Charts are
// cloned so the export sees a stable snapshot.
func (m *Model) exportCmd() tea.Cmd {
	if m.store.Len() == 0 {
		return m.setNotice("Nothing to export yet")
	}

	opts := export.DefaultOptions()
	opts.OutputDir = m.cfg.Export.Dir
	opts.Theme = m.cfg.Export.Theme
	opts.Render = render.Options{SQLExpanded: m.cfg.UI.SQLExpanded, ChartFilename: m.cfg.Chart.Filename}
	opts.ChartWidth = m.cfg.Chart.ExportWidth
	opts.ChartHeight = m.cfg.Chart.ExportHeight
	opts.Charts = make(map[string]*chart.Chart, len(m.charts))
	for id, c := range m.charts {
		opts.Charts[id] = c.Clone()
	}

	exporter, err := export.New(m.cfg.Export.Format, opts)
	if err != nil {
		return m.setNotice("[FAIL] " + err.Error())
	}
	return ExportCmd(m.store, exporter, opts)
}

// setNotice shows s in the status bar for a few seconds.
func (m *Model) setNotice(s string) tea.Cmd {
	m.noticeID++
	m.notice = s
	m.status.Notice = s
	return expireNoticeCmd(m.noticeID)
}
