// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/render"
)

// chartLeft is the column where a chart's plot starts inside the viewport:
// bubble margin, border and padding, then the chart box border.
const chartLeft = 5

// chartFor returns the live chart of a turn, building it on first use. A
// spec that cannot be charted yields nil and Mount shows the reason.
func (m *Model) chartFor(id string, b *render.Chart) *chart.Chart {
	if c, ok := m.charts[id]; ok {
		return c
	}
	c, err := chart.New(b.Spec)
	if err != nil {
		log.Printf("WARNING: CHART_BUILD_FAILED | turn=%s err=%v", id, err)
		return nil
	}
	c.SetExportSize(m.cfg.Chart.ExportWidth, m.cfg.Chart.ExportHeight)
	m.charts[id] = c
	return c
}

// chartChanged marks a turn's chart for re-mounting.
func (m *Model) chartChanged(id string) {
	m.chartRev[id]++
}

// handleChartKey applies a chart-mode key to the focused chart. It reports
// false for keys that chart mode does not use.
func (m *Model) handleChartKey(msg tea.KeyMsg) bool {
	c := m.charts[m.focusID]
	if c == nil {
		m.chartMode = false
		return false
	}

	k := m.keys
	changed := true
	switch {
	case key.Matches(msg, k.ZoomIn):
		changed = c.ZoomIn(m.anchor(c))
	case key.Matches(msg, k.ZoomOut):
		changed = c.ZoomOut(m.anchor(c))
	case key.Matches(msg, k.PanLeft):
		changed = c.Pan(-1, 0)
	case key.Matches(msg, k.PanRight):
		changed = c.Pan(1, 0)
	case key.Matches(msg, k.PanUp):
		changed = c.Pan(0, 0.1)
	case key.Matches(msg, k.PanDown):
		changed = c.Pan(0, -0.1)
	case key.Matches(msg, k.ResetView):
		c.ResetView()
	default:
		return false
	}
	if changed {
		m.chartChanged(m.focusID)
	}
	return true
}

// anchor is where zoom keys center: the tooltip cursor when shown,
// otherwise the middle of the window.
func (m *Model) anchor(c *chart.Chart) float64 {
	cur := c.Cursor()
	lo, hi := c.Window()
	if cur < lo || cur > hi || hi == lo {
		return 0.5
	}
	return float64(cur-lo) / float64(hi-lo)
}

// handleChartMouse maps wheel, drag and hover onto the focused chart.
func (m *Model) handleChartMouse(msg tea.MouseMsg) {
	id := m.focusID
	c := m.charts[id]
	if c == nil {
		return
	}
	w, _ := c.Size()
	frac := 0.5
	if w > 0 {
		frac = float64(msg.X-chartLeft) / float64(w)
		frac = min(max(frac, 0), 1)
	}

	switch msg.Type {
	case tea.MouseWheelUp:
		c.ZoomIn(frac)
	case tea.MouseWheelDown:
		c.ZoomOut(frac)
	case tea.MouseLeft:
		if m.dragging {
			m.dragTo(c, msg.X)
		} else {
			m.dragging = true
			m.dragX = msg.X
		}
	case tea.MouseMotion:
		if m.dragging {
			m.dragTo(c, msg.X)
		} else {
			c.SetCursor(c.IndexAt(frac))
		}
	case tea.MouseRelease:
		m.dragging = false
	default:
		return
	}
	m.chartChanged(id)
}

// dragTo pans by the labels the pointer moved across. Dragging right
// reveals earlier labels.
func (m *Model) dragTo(c *chart.Chart, x int) {
	w, _ := c.Size()
	lo, hi := c.Window()
	if w <= 0 {
		return
	}
	perCell := float64(hi-lo+1) / float64(w)
	labels := int(float64(x-m.dragX) * perCell)
	if labels == 0 {
		return
	}
	c.Pan(-labels, 0)
	m.dragX = x
}
