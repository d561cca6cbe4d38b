// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/util"
)

// fmtNumber formats a count with locale grouping.
func fmtNumber(n int) string {
	return format.Number(float64(n))
}

// formatClock formats a time as "15:04", adding the date when it is not today.
func formatClock(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2, 15:04")
}

// wordWrap wraps text to fit within the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for lineIdx, line := range strings.Split(text, "\n") {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if util.StringWidth(currentLine)+1+util.StringWidth(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}
	return result.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	w := 0
	for _, line := range strings.Split(text, "\n") {
		w = max(w, util.StringWidth(line))
	}
	return w
}
