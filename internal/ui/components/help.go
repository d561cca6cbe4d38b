// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/querychat/internal/ui/styles"
)

// HelpMarkdown is the key reference shown by "?".
const HelpMarkdown = `# Keys

| Key | Action |
|-----|--------|
| enter | send the question |
| tab / shift+tab | focus the next / previous answer |
| ctrl+o | show or hide the focused answer's SQL |
| ctrl+y | copy the focused SQL |
| 1-9 | show or hide a chart dataset |
| ctrl+g | zoom and pan the focused chart |
| ctrl+s | save the focused chart as PNG |
| ctrl+e | export the conversation |
| pgup / pgdn | scroll |
| ? | show or hide this help |
| esc | leave chart mode, then the focused answer, then quit |
| ctrl+c | quit |

## Chart mode

Mouse wheel or **+** / **-** zoom, dragging or the arrow keys pan,
**0** resets the view, and hovering shows the values under the pointer.
`

// RenderHelp renders the help text at width. It falls back to the raw
// markdown if glamour cannot render it.
func RenderHelp(theme *styles.Theme, width int) string {
	width = max(width-4, 20)

	style := "dark"
	if theme != nil {
		style = theme.GlamourStyle()
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	out := HelpMarkdown
	if err == nil {
		if rendered, rerr := r.Render(HelpMarkdown); rerr == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if theme == nil {
		return out
	}
	return theme.HelpBox.Render(out)
}
