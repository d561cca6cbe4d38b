// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/util"
)

var gridStyle = gochart.Style{
	StrokeColor: drawing.Color{R: 229, G: 231, B: 235, A: 255},
	StrokeWidth: 1,
}

// PNG draws the current view (visible datasets, label window, zoom) as a
// PNG image. Non-positive sizes use the export size.
func (c *Chart) PNG(w io.Writer, width, height int) (err error) {
	if width <= 0 {
		width = c.exportWidth
	}
	if height <= 0 {
		height = c.exportHeight
	}
	vis := c.visibleSeries()
	if len(vis) == 0 {
		return ErrNothingVisible
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRender, r)
			log.Printf("CHART_RENDER_FAILED | type=%s target=png err=%v", c.kind, r)
		}
	}()

	switch {
	case c.kind == model.ChartPie:
		err = c.pieChart(vis[0], width, height).Render(gochart.PNG, w)
	case c.kind == model.ChartBar && len(vis) == 1 && vis[0].axis == AxisLeft:
		err = c.barChart(vis[0], width, height).Render(gochart.PNG, w)
	default:
		graph := c.seriesChart(vis, width, height)
		if len(graph.Series) == 0 {
			return ErrNothingVisible
		}
		err = graph.Render(gochart.PNG, w)
	}
	if err != nil {
		log.Printf("CHART_RENDER_FAILED | type=%s target=png err=%v", c.kind, err)
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// DataURL returns the PNG export as a data: URL for embedding.
func (c *Chart) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := c.PNG(&buf, c.exportWidth, c.exportHeight); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SaveTo writes the PNG export to dir/name and returns the path. Only the
// base of name is used.
func (c *Chart) SaveTo(dir, name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = render.DefaultChartFilename
	}
	var buf bytes.Buffer
	if err := c.PNG(&buf, c.exportWidth, c.exportHeight); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	log.Printf("CHART_SAVED | path=%s bytes=%d", path, buf.Len())
	return path, nil
}

func background() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
}

func toTicks(ticks []Tick) []gochart.Tick {
	out := make([]gochart.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = gochart.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

// yAxis builds a go-chart axis from our own range and ticks so both targets
// agree on scale.
func (c *Chart) yAxis(a Axis, grid bool) gochart.YAxis {
	r, ok := c.AxisRange(a)
	if !ok {
		return gochart.YAxis{Style: gochart.Hidden(), Range: &gochart.ContinuousRange{Min: 0, Max: 1}}
	}
	ya := gochart.YAxis{
		Range: &gochart.ContinuousRange{Min: r.Min, Max: r.Max},
		Ticks: toTicks(c.Ticks(a)),
	}
	if grid {
		for _, v := range c.Gridlines() {
			ya.GridLines = append(ya.GridLines, gochart.GridLine{Value: v})
		}
		ya.GridMajorStyle = gridStyle
		ya.GridMinorStyle = gridStyle
	} else {
		ya.GridMajorStyle = gochart.Hidden()
		ya.GridMinorStyle = gochart.Hidden()
	}
	return ya
}

func (c *Chart) seriesChart(vis []*series, width, height int) *gochart.Chart {
	lo, hi := c.view.lo, c.view.hi

	xs := make([]float64, 0, hi-lo+1)
	ticks := []gochart.Tick{{Value: float64(lo) - 0.5}}
	for i := lo; i <= hi; i++ {
		xs = append(xs, float64(i))
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c.labels[i]})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(hi) + 0.5})

	graph := &gochart.Chart{
		Width:      width,
		Height:     height,
		Background: background(),
		XAxis: gochart.XAxis{
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: float64(lo) - 0.5, Max: float64(hi) + 0.5},
		},
		YAxis: c.yAxis(AxisLeft, true),
	}
	if c.HasRightAxis() && c.Visible(1) {
		graph.YAxisSecondary = c.yAxis(AxisRight, false)
	}

	for _, s := range vis {
		last := min(hi, s.points-1)
		if last < lo {
			continue
		}
		style := gochart.Style{
			StrokeColor: s.stroke,
			StrokeWidth: 2,
			DotColor:    s.stroke,
			DotWidth:    3,
		}
		if c.kind == model.ChartBar {
			style.FillColor = s.fill
		}
		cs := gochart.ContinuousSeries{
			Name:    s.label,
			XValues: xs[:last-lo+1],
			YValues: s.values[lo : last+1],
			Style:   style,
		}
		if s.axis == AxisRight {
			cs.YAxis = gochart.YAxisSecondary
		}
		graph.Series = append(graph.Series, cs)
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(graph)}
	return graph
}

func (c *Chart) barChart(s *series, width, height int) *gochart.BarChart {
	lo, hi := c.view.lo, c.view.hi
	bars := make([]gochart.Value, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		bars = append(bars, gochart.Value{
			Label: c.labels[i],
			Value: s.values[i],
			Style: gochart.Style{
				FillColor:   s.stroke.WithAlpha(180),
				StrokeColor: s.stroke,
				StrokeWidth: 1,
			},
		})
	}

	barWidth := (width - 120) / max(len(bars), 1) * 6 / 10
	return &gochart.BarChart{
		Title:        s.label,
		Width:        width,
		Height:       height,
		Background:   background(),
		BarWidth:     max(barWidth, 4),
		YAxis:        c.yAxis(AxisLeft, true),
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
}

func (c *Chart) pieChart(s *series, width, height int) *gochart.PieChart {
	values := make([]gochart.Value, 0, len(s.values))
	for j, v := range s.values {
		values = append(values, gochart.Value{
			Label: c.labels[j],
			Value: v,
			Style: gochart.Style{FillColor: s.slices[j]},
		})
	}
	return &gochart.PieChart{
		Title:      s.label,
		Width:      width,
		Height:     height,
		Background: background(),
		Values:     values,
	}
}
