// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/util"
)

const (
	minWidth  = 20
	minHeight = 4

	gridColor   = "240"
	axisColor   = "244"
	cursorColor = "245"
)

var markers = []rune{'●', '◆', '▲', '■', '✚', '★'}

// =============================================================================
// CANVAS
// =============================================================================

type cell struct {
	r     rune
	color string
}

type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	cv := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range cv.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		cv.cells[y] = row
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.cells[y][x] = cell{r: r, color: color}
}

func (cv *canvas) empty(x, y int) bool {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return false
	}
	c := cv.cells[y][x]
	return c.r == ' ' || c.color == gridColor
}

// line draws a segment with Bresenham's algorithm.
func (cv *canvas) line(x0, y0, x1, y1 int, r rune, color string) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if cv.empty(x0, y0) {
			cv.set(x0, y0, r, color)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// row renders line y, styling runs of equal color together.
func (cv *canvas) row(y int) string {
	var b strings.Builder
	cells := cv.cells[y]
	for i := 0; i < len(cells); {
		j := i
		var run strings.Builder
		for j < len(cells) && cells[j].color == cells[i].color {
			run.WriteRune(cells[j].r)
			j++
		}
		b.WriteString(paint(run.String(), cells[i].color))
		i = j
	}
	return b.String()
}

func paint(s, color string) string {
	if color == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// =============================================================================
// DRAWING
// =============================================================================

func drawTerminal(c *Chart, width, height int) string {
	width = max(width, minWidth)
	height = max(height, minHeight)
	if c.kind == model.ChartPie {
		return drawPie(c, width)
	}
	return drawCartesian(c, width, height)
}

// rowFor maps v onto a canvas row, row 0 being the top.
func rowFor(v float64, r Range, h int) int {
	if r.Span() <= 0 || h <= 1 {
		return h - 1
	}
	frac := (v - r.Min) / r.Span()
	return (h - 1) - int(math.Round(frac*float64(h-1)))
}

func tickRows(ticks []Tick, r Range, h int) map[int]string {
	out := make(map[int]string, len(ticks))
	for _, t := range ticks {
		y := rowFor(t.Value, r, h)
		if y >= 0 && y < h {
			out[y] = t.Label
		}
	}
	return out
}

func labelWidth(ticks []Tick) int {
	w := 0
	for _, t := range ticks {
		w = max(w, util.StringWidth(t.Label))
	}
	return w
}

func drawCartesian(c *Chart, width, height int) string {
	left, hasLeft := c.AxisRange(AxisLeft)
	right, hasRight := c.AxisRange(AxisRight)
	leftTicks := c.Ticks(AxisLeft)
	rightTicks := c.Ticks(AxisRight)

	lw := labelWidth(leftTicks)
	rw := 0
	plotW := width - lw - 1
	if hasRight {
		rw = labelWidth(rightTicks)
		plotW -= rw + 1
	}
	plotW = max(plotW, 4)
	plotH := height - 1

	cv := newCanvas(plotW, plotH)
	lo, hi := c.Window()
	count := hi - lo + 1

	rangeFor := func(a Axis) (Range, bool) {
		if a == AxisRight {
			return right, hasRight
		}
		return left, hasLeft
	}

	// Gridlines follow the left axis only.
	if hasLeft {
		for _, t := range leftTicks {
			y := rowFor(t.Value, left, plotH)
			for x := 0; x < plotW; x++ {
				cv.set(x, y, '┄', gridColor)
			}
		}
	}

	xCenter := func(i int) int {
		if c.kind == model.ChartBar {
			k := i - lo
			return (k*plotW + (k+1)*plotW) / (2 * count)
		}
		if count <= 1 {
			return plotW / 2
		}
		return int(math.Round(float64(i-lo) / float64(count-1) * float64(plotW-1)))
	}

	if cur := c.Cursor(); cur >= lo && cur <= hi && count > 0 {
		x := xCenter(cur)
		for y := 0; y < plotH; y++ {
			cv.set(x, y, '│', cursorColor)
		}
	}

	if count > 0 {
		switch c.kind {
		case model.ChartBar:
			drawBars(c, cv, lo, hi, rangeFor)
		default:
			drawLines(c, cv, lo, hi, xCenter, rangeFor)
		}
	}

	leftRows := map[int]string{}
	if hasLeft {
		leftRows = tickRows(leftTicks, left, plotH)
	}
	rightRows := map[int]string{}
	if hasRight {
		rightRows = tickRows(rightTicks, right, plotH)
	}

	var b strings.Builder
	for y := 0; y < plotH; y++ {
		label, ok := leftRows[y]
		b.WriteString(paint(util.PadLeft(label, lw), axisColor))
		if ok {
			b.WriteString(paint("┤", axisColor))
		} else {
			b.WriteString(paint("│", axisColor))
		}
		b.WriteString(cv.row(y))
		if hasRight {
			label, ok := rightRows[y]
			if ok {
				b.WriteString(paint("├", axisColor))
			} else {
				b.WriteString(paint("│", axisColor))
			}
			b.WriteString(paint(util.PadRight(label, rw), axisColor))
		}
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", lw))
	b.WriteString(paint("└", axisColor))
	b.WriteString(paint(xLabels(c, lo, hi, plotW, xCenter), axisColor))
	if hasRight {
		b.WriteString(paint("┘", axisColor))
	}
	return b.String()
}

func drawLines(c *Chart, cv *canvas, lo, hi int, xCenter func(int) int, rangeFor func(Axis) (Range, bool)) {
	type point struct{ x, y int }
	for si, s := range c.series {
		if !s.visible {
			continue
		}
		r, ok := rangeFor(s.axis)
		if !ok {
			continue
		}
		color := hex(s.stroke)
		var pts []point
		for i := lo; i <= min(hi, s.points-1); i++ {
			pts = append(pts, point{xCenter(i), rowFor(s.values[i], r, cv.h)})
		}
		for k := 1; k < len(pts); k++ {
			cv.line(pts[k-1].x, pts[k-1].y, pts[k].x, pts[k].y, '·', color)
		}
		marker := markers[si%len(markers)]
		for _, p := range pts {
			cv.set(p.x, p.y, marker, color)
		}
	}
}

func drawBars(c *Chart, cv *canvas, lo, hi int, rangeFor func(Axis) (Range, bool)) {
	vis := c.visibleSeries()
	if len(vis) == 0 {
		return
	}
	count := hi - lo + 1
	for i := lo; i <= hi; i++ {
		k := i - lo
		sx := k * cv.w / count
		ex := (k + 1) * cv.w / count
		inner := ex - sx - 1
		if inner < len(vis) {
			inner = ex - sx
		}
		bw := max(1, inner/len(vis))
		for j, s := range vis {
			r, ok := rangeFor(s.axis)
			if !ok || !s.has(i) {
				continue
			}
			base := math.Max(r.Min, math.Min(r.Max, 0))
			y0 := rowFor(base, r, cv.h)
			y1 := rowFor(s.values[i], r, cv.h)
			if y0 > y1 {
				y0, y1 = y1, y0
			}
			color := hex(s.stroke)
			for x := sx + j*bw; x < sx+(j+1)*bw && x < ex; x++ {
				for y := y0; y <= y1; y++ {
					cv.set(x, y, '█', color)
				}
			}
		}
	}
}

// xLabels lays out category labels under the plot, dropping any that would
// overlap the previous one.
func xLabels(c *Chart, lo, hi, plotW int, xCenter func(int) int) string {
	count := hi - lo + 1
	if count <= 0 {
		return strings.Repeat(" ", plotW)
	}
	maxW := max(1, plotW/count-1)
	if count == 1 {
		maxW = plotW
	}

	type placed struct {
		start int
		text  string
	}
	var items []placed
	for i := lo; i <= hi; i++ {
		text := util.TruncateWidth(c.labels[i], max(maxW, 3))
		w := util.StringWidth(text)
		start := clampInt(xCenter(i)-w/2, 0, max(0, plotW-w))
		items = append(items, placed{start, text})
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].start < items[b].start })

	var b strings.Builder
	col := 0
	for _, it := range items {
		if it.start < col+boolInt(col > 0) {
			continue
		}
		w := util.StringWidth(it.text)
		if it.start+w > plotW {
			continue
		}
		b.WriteString(strings.Repeat(" ", it.start-col))
		b.WriteString(it.text)
		col = it.start + w
	}
	if col < plotW {
		b.WriteString(strings.Repeat(" ", plotW-col))
	}
	return b.String()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// drawPie shows each visible dataset as a proportional strip followed by a
// line per slice with its share.
func drawPie(c *Chart, width int) string {
	var sections []string
	for _, s := range c.series {
		if !s.visible {
			continue
		}
		total := 0.0
		for _, v := range s.values {
			if v > 0 {
				total += v
			}
		}

		var b strings.Builder
		b.WriteString(s.label)
		b.WriteByte('\n')
		if total <= 0 {
			b.WriteString(paint("(no positive values)", axisColor))
			sections = append(sections, b.String())
			continue
		}

		used := 0
		for j, v := range s.values {
			if v <= 0 {
				continue
			}
			n := int(math.Round(v / total * float64(width)))
			if j == len(s.values)-1 || used+n > width {
				n = width - used
			}
			b.WriteString(paint(strings.Repeat("█", max(n, 0)), hex(s.slices[j])))
			used += max(n, 0)
		}
		for j, v := range s.values {
			share := 0.0
			if v > 0 {
				share = v / total * 100
			}
			fmt.Fprintf(&b, "\n%s %s  %s  (%s%%)",
				paint("■", hex(s.slices[j])),
				c.labels[j],
				format.Number(v),
				format.Fixed(share, 1))
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}
