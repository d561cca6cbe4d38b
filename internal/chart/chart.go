// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/model"
)

var (
	// ErrNoSpec is returned by New for a nil spec.
	ErrNoSpec = errors.New("chart: no chart data")

	// ErrNoDatasets is returned by New for a spec without datasets.
	ErrNoDatasets = errors.New("chart: no datasets")

	// ErrNothingVisible is returned when every dataset is hidden.
	ErrNothingVisible = errors.New("chart: no visible datasets")

	// ErrRender wraps a recovered failure while drawing.
	ErrRender = errors.New("chart: render failed")
)

// Export sizes used when none are configured.
const (
	DefaultExportWidth  = 800
	DefaultExportHeight = 400
)

// Axis identifies a vertical axis.
type Axis int

const (
	AxisLeft Axis = iota
	AxisRight
)

// String returns the axis name.
func (a Axis) String() string {
	if a == AxisRight {
		return "right"
	}
	return "left"
}

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Center returns the midpoint.
func (r Range) Center() float64 { return (r.Min + r.Max) / 2 }

// Tick is a labelled position on an axis.
type Tick struct {
	Value float64
	Label string
}

// LegendEntry describes one dataset for the legend.
type LegendEntry struct {
	Index   int
	Label   string
	Color   string
	Visible bool
	Axis    Axis
}

type series struct {
	label  string
	values []float64
	// points is how many leading values came from the data. The rest are
	// gaps.
	points  int
	stroke  drawing.Color
	fill    drawing.Color
	slices  []drawing.Color
	axis    Axis
	visible bool
}

// has reports whether the dataset has a value at label index i.
func (s *series) has(i int) bool { return i >= 0 && i < s.points }

// Chart is an interactive view over a ChartSpec.
type Chart struct {
	kind   model.ChartType
	labels []string
	series []*series
	view   view
	cursor int

	attached bool
	width    int
	height   int
	rendered string
	err      error

	exportWidth  int
	exportHeight int

	draw func(c *Chart, width, height int) string
}

// New builds a chart from spec. Each dataset is cut to the number of labels
// and a shorter one leaves gaps at the end; when there are no labels,
// positions are numbered from the longest dataset.
func New(spec *model.ChartSpec) (*Chart, error) {
	if spec == nil {
		return nil, ErrNoSpec
	}
	if len(spec.Datasets) == 0 {
		return nil, ErrNoDatasets
	}

	labels := make([]string, len(spec.Labels))
	copy(labels, spec.Labels)
	if len(labels) == 0 {
		longest := 0
		for _, ds := range spec.Datasets {
			longest = max(longest, len(ds.Data))
		}
		for i := 0; i < longest; i++ {
			labels = append(labels, strconv.Itoa(i+1))
		}
	}

	c := &Chart{
		kind:         spec.Type.Normalize(),
		labels:       labels,
		cursor:       -1,
		exportWidth:  DefaultExportWidth,
		exportHeight: DefaultExportHeight,
		draw:         drawTerminal,
	}

	for i, ds := range spec.Datasets {
		values := make([]float64, len(labels))
		copy(values, ds.Data)

		s := &series{
			label:   ds.Label,
			values:  values,
			points:  min(len(ds.Data), len(labels)),
			visible: true,
		}
		if strings.TrimSpace(s.label) == "" {
			s.label = fmt.Sprintf("Dataset %d", i+1)
		}
		s.stroke = parseColor(ds.BorderColor, paletteColor(i))
		s.fill = parseColor(ds.BackgroundColor.At(0), s.stroke.WithAlpha(51))
		for j := range labels {
			var raw string
			if len(ds.BackgroundColor) > 1 {
				raw = ds.BackgroundColor.At(j)
			}
			s.slices = append(s.slices, parseColor(raw, paletteColor(j)))
		}
		if i == 1 && c.HasAxes() {
			s.axis = AxisRight
		}
		c.series = append(c.series, s)
	}

	c.view = c.fullView()
	return c, nil
}

// Type returns the normalized chart type.
func (c *Chart) Type() model.ChartType { return c.kind }

// Labels returns a copy of the X labels.
func (c *Chart) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Len returns the number of labels.
func (c *Chart) Len() int { return len(c.labels) }

// DatasetCount returns the number of datasets.
func (c *Chart) DatasetCount() int { return len(c.series) }

// SetExportSize sets the PNG size used by DataURL and SaveTo.
func (c *Chart) SetExportSize(width, height int) {
	if width > 0 {
		c.exportWidth = width
	}
	if height > 0 {
		c.exportHeight = height
	}
}

// Clone returns an unattached copy with the same visibility and view.
func (c *Chart) Clone() *Chart {
	cp := *c
	cp.series = make([]*series, len(c.series))
	for i, s := range c.series {
		sc := *s
		cp.series[i] = &sc
	}
	cp.attached = false
	cp.rendered = ""
	cp.err = nil
	return &cp
}

// =============================================================================
// LEGEND
// =============================================================================

// Toggle flips the visibility of dataset i and returns the new state. An
// index out of range is ignored.
func (c *Chart) Toggle(i int) bool {
	if i < 0 || i >= len(c.series) {
		return false
	}
	c.series[i].visible = !c.series[i].visible
	c.refresh()
	return c.series[i].visible
}

// Visible reports whether dataset i is shown.
func (c *Chart) Visible(i int) bool {
	return i >= 0 && i < len(c.series) && c.series[i].visible
}

// Legend lists every dataset in order.
func (c *Chart) Legend() []LegendEntry {
	out := make([]LegendEntry, len(c.series))
	for i, s := range c.series {
		out[i] = LegendEntry{
			Index:   i,
			Label:   s.label,
			Color:   hex(s.stroke),
			Visible: s.visible,
			Axis:    s.axis,
		}
	}
	return out
}

// SliceColors returns the pie slice colors of dataset i as hex strings.
func (c *Chart) SliceColors(i int) []string {
	if i < 0 || i >= len(c.series) {
		return nil
	}
	out := make([]string, len(c.series[i].slices))
	for j, col := range c.series[i].slices {
		out[j] = hex(col)
	}
	return out
}

func (c *Chart) visibleSeries() []*series {
	var out []*series
	for _, s := range c.series {
		if s.visible {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// AXES
// =============================================================================

// HasAxes reports whether the chart is drawn on axes (everything but pie).
func (c *Chart) HasAxes() bool { return c.kind != model.ChartPie }

// HasRightAxis reports whether a right axis exists for dataset 1.
func (c *Chart) HasRightAxis() bool { return c.HasAxes() && len(c.series) >= 2 }

// AxisOf returns the axis dataset i is bound to.
func (c *Chart) AxisOf(i int) (Axis, bool) {
	if i < 0 || i >= len(c.series) || !c.HasAxes() {
		return AxisLeft, false
	}
	return c.series[i].axis, true
}

// AxisRange returns the range of an axis over its visible datasets inside
// the current window, with the vertical zoom applied. It reports false when
// no visible dataset is bound to the axis.
func (c *Chart) AxisRange(a Axis) (Range, bool) {
	base, ok := c.baseRange(a)
	if !ok {
		return Range{}, false
	}
	if c.view.yZoom == 1 && c.view.yShift == 0 {
		return base, true
	}
	span := base.Span() / c.view.yZoom
	center := base.Center() + c.view.yShift*base.Span()
	return Range{Min: center - span/2, Max: center + span/2}, true
}

func (c *Chart) baseRange(a Axis) (Range, bool) {
	if !c.HasAxes() || len(c.labels) == 0 {
		return Range{}, false
	}
	lo, hi := c.view.lo, c.view.hi
	minV, maxV := math.Inf(1), math.Inf(-1)
	seen, found := false, false
	for _, s := range c.series {
		if !s.visible || s.axis != a {
			continue
		}
		seen = true
		for i := lo; i <= min(hi, s.points-1); i++ {
			minV = math.Min(minV, s.values[i])
			maxV = math.Max(maxV, s.values[i])
			found = true
		}
	}
	if !seen {
		return Range{}, false
	}
	if !found {
		minV, maxV = 0, 0
	}
	if c.kind == model.ChartBar {
		minV = math.Min(minV, 0)
		maxV = math.Max(maxV, 0)
	}
	return niceRange(minV, maxV), true
}

// Ticks returns the labelled ticks of an axis.
func (c *Chart) Ticks(a Axis) []Tick {
	r, ok := c.AxisRange(a)
	if !ok || r.Span() <= 0 {
		return nil
	}
	step := niceStep(r.Span(), 5)
	places := 0
	if step < 1 {
		places = min(int(math.Ceil(-math.Log10(step)-1e-9)), 6)
	}

	var ticks []Tick
	start := math.Ceil(r.Min/step-1e-9) * step
	for i := 0; i < 50; i++ {
		v := start + float64(i)*step
		if v > r.Max+step*1e-9 {
			break
		}
		v = math.Round(v/step) * step
		if v == 0 {
			v = 0
		}
		ticks = append(ticks, Tick{Value: v, Label: format.Fixed(v, places)})
	}
	return ticks
}

// Gridlines returns the values horizontal gridlines are drawn at. They come
// from the left axis only.
func (c *Chart) Gridlines() []float64 {
	ticks := c.Ticks(AxisLeft)
	out := make([]float64, len(ticks))
	for i, t := range ticks {
		out[i] = t.Value
	}
	return out
}

func niceRange(minV, maxV float64) Range {
	if minV == maxV {
		if minV == 0 {
			maxV = 1
		} else {
			pad := math.Abs(minV) * 0.1
			minV -= pad
			maxV += pad
		}
	}
	step := niceStep(maxV-minV, 5)
	return Range{
		Min: math.Floor(minV/step) * step,
		Max: math.Ceil(maxV/step) * step,
	}
}

// niceStep picks a 1/2/5 x 10^n step giving roughly ticks divisions.
func niceStep(span float64, ticks int) float64 {
	if span <= 0 || ticks < 2 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 1
	}
	rough := span / float64(ticks-1)
	mag := math.Pow(10, math.Floor(math.Log10(rough)))
	var nice float64
	switch f := rough / mag; {
	case f < 1.5:
		nice = 1
	case f < 3:
		nice = 2
	case f < 7:
		nice = 5
	default:
		nice = 10
	}
	return nice * mag
}

// =============================================================================
// TOOLTIP
// =============================================================================

// Tooltip describes the point at label index: the label, then one
// "dataset: value" line per visible dataset.
func (c *Chart) Tooltip(index int) string {
	if index < 0 || index >= len(c.labels) {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.labels[index])
	for _, s := range c.series {
		if !s.visible || !s.has(index) {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", s.label, format.Number(s.values[index]))
	}
	return b.String()
}

// Cursor returns the label index the tooltip follows, or -1.
func (c *Chart) Cursor() int { return c.cursor }

// SetCursor moves the tooltip to label index i. A negative index hides it.
func (c *Chart) SetCursor(i int) {
	switch {
	case i < 0 || len(c.labels) == 0:
		c.cursor = -1
	case i >= len(c.labels):
		c.cursor = len(c.labels) - 1
	default:
		c.cursor = i
	}
	c.refresh()
}

// MoveCursor steps the tooltip by delta labels, starting from the window's
// first label. The window follows the cursor when it leaves it.
func (c *Chart) MoveCursor(delta int) {
	if len(c.labels) == 0 {
		return
	}
	next := c.cursor + delta
	if c.cursor < 0 {
		next = c.view.lo
	}
	next = clampInt(next, 0, len(c.labels)-1)
	if c.Interactive() {
		if next < c.view.lo {
			c.shiftWindow(next - c.view.lo)
		} else if next > c.view.hi {
			c.shiftWindow(next - c.view.hi)
		}
	}
	c.cursor = next
	c.refresh()
}

// =============================================================================
// RENDERING
// =============================================================================

// Attach tells the chart it has been mounted into a laid-out container of
// the given size. Nothing is drawn before the first call.
func (c *Chart) Attach(width, height int) {
	c.width = width
	c.height = height
	c.attached = true
	c.refresh()
}

// Attached reports whether Attach has been called.
func (c *Chart) Attached() bool { return c.attached }

// Size returns the container size given to Attach.
func (c *Chart) Size() (int, int) { return c.width, c.height }

// View returns the drawn chart, or "" while unattached or after a failure.
func (c *Chart) View() string {
	if !c.attached || c.err != nil {
		return ""
	}
	return c.rendered
}

// Err reports why the last draw failed.
func (c *Chart) Err() error { return c.err }

func (c *Chart) refresh() {
	if !c.attached {
		return
	}
	c.rendered, c.err = c.safeDraw()
}

func (c *Chart) safeDraw() (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("%w: %v", ErrRender, r)
			log.Printf("CHART_RENDER_FAILED | type=%s target=terminal err=%v", c.kind, r)
		}
	}()
	return c.draw(c, c.width, c.height), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
