// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/styles"
	"github.com/jeranaias/querychat/internal/util"
)

// BlockFailedText replaces a block that could not be drawn.
const BlockFailedText = "[!] This part of the answer could not be displayed."

// DefaultChartHeight is the chart height in rows when none is given.
const DefaultChartHeight = 12

// MountOptions controls how a tree is laid out.
type MountOptions struct {
	Width int
	Theme *styles.Theme

	// Focused draws the focus ring around a bot message.
	Focused bool

	ShowTimestamps bool
	Timestamp      time.Time

	// SpinnerFrame is the current frame of the thinking spinner.
	SpinnerFrame string

	// Chart is the live chart for the tree's chart block. Mount attaches it
	// at the laid-out width. When nil a throwaway chart is built from the spec.
	Chart       *chart.Chart
	ChartHeight int

	// ChartActive marks chart-interaction mode.
	ChartActive bool
}

func (o MountOptions) withDefaults() MountOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Theme == nil {
		o.Theme = styles.NewTheme()
	}
	if o.ChartHeight <= 0 {
		o.ChartHeight = DefaultChartHeight
	}
	if o.SpinnerFrame == "" {
		o.SpinnerFrame = styles.ThinkingSpinner.Frame(0)
	}
	return o
}

// bubbleInset is border plus padding plus margin of a bot bubble.
const bubbleInset = 8

// innerWidth is the content width inside a bot bubble.
func (o MountOptions) innerWidth() int {
	return max(o.Width-bubbleInset, 20)
}

// Mount renders tree as terminal text.
func Mount(tree render.Tree, opts MountOptions) string {
	opts = opts.withDefaults()

	switch tree.Kind {
	case render.KindUser:
		return mountUser(tree, opts)
	case render.KindThinking:
		return mountBot(tree, opts, opts.Theme.BotBubble)
	case render.KindError:
		return mountBot(tree, opts, opts.Theme.ErrorBubble)
	default:
		style := opts.Theme.BotBubble
		if opts.Focused {
			style = opts.Theme.FocusedBubble
		}
		return mountBot(tree, opts, style)
	}
}

// =============================================================================
// BUBBLES
// =============================================================================

func mountUser(tree render.Tree, opts MountOptions) string {
	t := opts.Theme
	var text string
	for _, b := range tree.Blocks {
		if tb, ok := b.(render.Text); ok {
			text = tb.Body
		}
	}
	text = util.StripControl(text)

	maxContent := max(opts.Width*7/10, 20)
	contentWidth := min(maxLineWidth(wordWrap(text, maxContent-4))+4, maxContent)
	bubble := t.UserBubble.UnsetMarginLeft().Width(contentWidth).Render(wordWrap(text, contentWidth-4))

	header := roleHeader(t, "You", opts)
	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(opts.Width, lipgloss.Right, block)
}

func mountBot(tree render.Tree, opts MountOptions, bubble lipgloss.Style) string {
	inner := opts.innerWidth()

	parts := make([]string, 0, len(tree.Blocks))
	for _, b := range tree.Blocks {
		if s := safeBlock(tree, b, opts, inner); s != "" {
			parts = append(parts, s)
		}
	}

	body := strings.Join(parts, "\n")
	header := roleHeader(opts.Theme, "Assistant", opts)
	return lipgloss.JoinVertical(lipgloss.Left, header, bubble.Width(inner+2).Render(body))
}

func roleHeader(t *styles.Theme, role string, opts MountOptions) string {
	h := t.RoleLabel.Render(role)
	if opts.ShowTimestamps && !opts.Timestamp.IsZero() {
		h += " " + t.Timestamp.Render(formatClock(opts.Timestamp))
	}
	return h
}

// =============================================================================
// BLOCKS
// =============================================================================

// safeBlock draws one block, containing any panic to that block.
func safeBlock(tree render.Tree, b render.Block, opts MountOptions, inner int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("MOUNT_BLOCK_FAILED | turn=%s block=%T err=%v", tree.TurnID, b, r)
			out = opts.Theme.ErrorHint.Render(BlockFailedText)
		}
	}()

	t := opts.Theme
	switch v := b.(type) {
	case render.SQLPanel:
		return mountSQL(v, t, inner)
	case render.Text:
		return t.AnswerText.Width(inner).Render(util.StripControl(v.Body))
	case render.Table:
		return mountTable(v, t, inner)
	case render.Chart:
		return mountChart(v, opts, inner)
	case render.ErrorNotice:
		return mountError(v, t, inner)
	case render.Spinner:
		return t.Spinner.Render(opts.SpinnerFrame) + " " + t.ThinkingText.Render(v.Label)
	default:
		return ""
	}
}

// ErrorLine is the first line of an error turn.
func ErrorLine(message string) string {
	return styles.StatusIndicators.Offline + " Error: " + message
}

func mountError(e render.ErrorNotice, t *styles.Theme, inner int) string {
	lines := []string{t.ErrorTitle.Render(ErrorLine(e.Message))}
	if e.BackendURL != "" {
		lines = append(lines, "", t.ErrorHint.Render("BACKEND_URL: "+e.BackendURL))
	}
	return lipgloss.NewStyle().Width(inner).Render(strings.Join(lines, "\n"))
}

// mountChart is a variable so tests can substitute a failing chart.
var mountChart = defaultMountChart

func defaultMountChart(b render.Chart, opts MountOptions, inner int) string {
	t := opts.Theme

	c := opts.Chart
	if c == nil {
		var err error
		c, err = chart.New(b.Spec)
		if err != nil {
			return t.ErrorHint.Render(fmt.Sprintf("Chart unavailable: %v", err))
		}
	}

	width := inner - 2
	if w, h := c.Size(); !c.Attached() || w != width || h != opts.ChartHeight {
		c.Attach(width, opts.ChartHeight)
	}

	view := c.View()
	if view == "" {
		if c.Err() != nil {
			return t.ErrorHint.Render("Chart unavailable: " + c.Err().Error())
		}
		return t.Hint.Render("Chart too small to display")
	}

	box := t.ChartBox
	if opts.ChartActive {
		box = t.ChartBoxActive
	}
	lines := []string{box.Render(view), ChartLegend(c, t)}
	if tip := c.Tooltip(c.Cursor()); tip != "" {
		lines = append(lines, t.Tooltip.Render(strings.ReplaceAll(tip, "\n", "  ")))
	}
	lines = append(lines, ChartHint(c, b.DownloadName, opts.ChartActive, t))
	return strings.Join(lines, "\n")
}

// ChartLegend draws the numbered legend; hidden datasets are struck through.
func ChartLegend(c *chart.Chart, t *styles.Theme) string {
	entries := c.Legend()
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
		label := fmt.Sprintf("%d %s", e.Index+1, e.Label)
		if c.HasRightAxis() && e.Axis == chart.AxisRight {
			label += " (right)"
		}
		style := t.LegendOn
		if !e.Visible {
			style = t.LegendOff
			swatch = t.LegendOff.Render("□")
		}
		parts = append(parts, swatch+" "+style.Render(label))
	}
	return strings.Join(parts, "   ")
}

// ChartHint lists the chart keys.
func ChartHint(c *chart.Chart, filename string, active bool, t *styles.Theme) string {
	if filename == "" {
		filename = render.DefaultChartFilename
	}
	hints := []string{"ctrl+s save " + filename, "1-9 toggle"}
	if c.Interactive() {
		if active {
			hints = append(hints, "wheel/+/- zoom", "drag/arrows pan", "0 reset", "ctrl+g done")
		} else {
			hints = append(hints, "ctrl+g zoom & pan")
		}
	}
	return t.Hint.Render(strings.Join(hints, " · "))
}
