// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/styles"
)

// =============================================================================
// SQL DISCLOSURE
// =============================================================================

// Disclosure markers for the collapsed and expanded SQL panel.
const (
	CollapsedMarker = "▸"
	ExpandedMarker  = "▾"
)

// SQLSummaryLine is the clickable line above the SQL.
func SQLSummaryLine(p render.SQLPanel) string {
	marker := CollapsedMarker
	if p.Expanded {
		marker = ExpandedMarker
	}
	summary := p.Summary
	if summary == "" {
		summary = render.SQLSummary
	}
	return marker + " " + summary
}

func mountSQL(p render.SQLPanel, t *styles.Theme, inner int) string {
	line := t.SQLSummary.Render(SQLSummaryLine(p))
	if !p.Expanded {
		return line + " " + t.Hint.Render("(ctrl+o)")
	}

	code := HighlightSQL(strings.TrimSpace(p.SQL), t)
	return line + "\n" + t.SQLBox.Width(inner-2).Render(code)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// HighlightSQL colors SQL for the terminal. It returns the input unchanged
// when highlighting fails.
func HighlightSQL(code string, t *styles.Theme) string {
	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	formatterName := "terminal256"
	if t != nil {
		styleName = t.ChromaStyle()
		if t.HasTrueColor {
			formatterName = "terminal16m"
		}
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
