// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"math"

	"github.com/jeranaias/querychat/internal/model"
)

const (
	maxYZoom  = 64
	maxYShift = 8
)

// view is the visible part of the chart: labels lo..hi inclusive, plus a
// vertical zoom factor and a vertical offset measured in base spans.
type view struct {
	lo     int
	hi     int
	yZoom  float64
	yShift float64
}

func (c *Chart) fullView() view {
	return view{lo: 0, hi: len(c.labels) - 1, yZoom: 1}
}

// Interactive reports whether zoom and pan apply. Only line and bar charts
// support them.
func (c *Chart) Interactive() bool {
	return c.kind == model.ChartLine || c.kind == model.ChartBar
}

// Window returns the first and last visible label index.
func (c *Chart) Window() (int, int) { return c.view.lo, c.view.hi }

// YZoom returns the vertical zoom factor.
func (c *Chart) YZoom() float64 { return c.view.yZoom }

// Zoomed reports whether the view differs from the original.
func (c *Chart) Zoomed() bool { return c.view != c.fullView() }

// ZoomIn halves the label window around anchor (0 = left edge, 1 = right
// edge) and doubles the vertical zoom.
func (c *Chart) ZoomIn(anchor float64) bool {
	if !c.Interactive() {
		return false
	}
	c.zoomX(anchor, 0.5)
	c.view.yZoom = math.Min(c.view.yZoom*2, maxYZoom)
	c.refresh()
	return true
}

// ZoomOut doubles the label window around anchor and halves the vertical
// zoom, never past the original view.
func (c *Chart) ZoomOut(anchor float64) bool {
	if !c.Interactive() {
		return false
	}
	c.zoomX(anchor, 2)
	c.view.yZoom = math.Max(c.view.yZoom/2, 1)
	if c.view.yZoom == 1 {
		c.view.yShift = 0
	}
	c.refresh()
	return true
}

// Pan moves the window dx labels to the right and the vertical range up by
// dy of its visible height.
func (c *Chart) Pan(dx int, dy float64) bool {
	if !c.Interactive() {
		return false
	}
	c.shiftWindow(dx)
	c.view.yShift += dy / c.view.yZoom
	c.view.yShift = math.Max(-maxYShift, math.Min(maxYShift, c.view.yShift))
	c.refresh()
	return true
}

// ResetView restores the original window and zoom.
func (c *Chart) ResetView() {
	c.view = c.fullView()
	c.refresh()
}

// IndexAt maps a horizontal position inside the plot (0 = left edge, 1 =
// right edge) to the nearest label index in the window.
func (c *Chart) IndexAt(frac float64) int {
	if len(c.labels) == 0 {
		return -1
	}
	frac = math.Max(0, math.Min(1, frac))
	w := c.view.hi - c.view.lo
	return c.view.lo + int(math.Round(frac*float64(w)))
}

func (c *Chart) zoomX(anchor, factor float64) {
	n := len(c.labels)
	if n == 0 {
		return
	}
	anchor = math.Max(0, math.Min(1, anchor))
	w := c.view.hi - c.view.lo + 1
	nw := int(math.Round(float64(w) * factor))
	nw = clampInt(nw, min(2, n), n)

	pivot := float64(c.view.lo) + anchor*float64(w-1)
	lo := int(math.Round(pivot - anchor*float64(nw-1)))
	lo = clampInt(lo, 0, n-nw)
	c.view.lo, c.view.hi = lo, lo+nw-1
}

func (c *Chart) shiftWindow(dx int) {
	n := len(c.labels)
	if n == 0 {
		return
	}
	w := c.view.hi - c.view.lo + 1
	lo := clampInt(c.view.lo+dx, 0, n-w)
	c.view.lo, c.view.hi = lo, lo+w-1
}
