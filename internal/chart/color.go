// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// palette matches the colors the backend assigns to datasets.
var palette = []drawing.Color{
	{R: 102, G: 126, B: 234, A: 255},
	{R: 255, G: 99, B: 132, A: 255},
	{R: 75, G: 192, B: 192, A: 255},
	{R: 255, G: 159, B: 64, A: 255},
	{R: 153, G: 102, B: 255, A: 255},
	{R: 255, G: 205, B: 86, A: 255},
}

// paletteColor returns the default color for position i.
func paletteColor(i int) drawing.Color {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// parseColor reads a CSS color (rgb(), rgba(), #hex or a basic keyword),
// falling back when the string is empty or unrecognised.
func parseColor(raw string, fallback drawing.Color) drawing.Color {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	raw = strings.ToLower(raw)
	if strings.HasPrefix(raw, "#") && len(raw) != 4 && len(raw) != 7 {
		return fallback
	}
	c := drawing.ParseColor(raw)
	if c.IsZero() {
		return fallback
	}
	return c
}

// hex formats c for lipgloss, dropping alpha.
func hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
