// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/styles"
)

// mountTable draws the result grid, squeezing columns when it is wider
// than the bubble.
func mountTable(tb render.Table, t *styles.Theme, inner int) string {
	build := func() *table.Table {
		return table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(t.TableBorder).
			Headers(tb.Headers...).
			Rows(tb.Rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return t.TableHeader
				case row >= 0 && row < len(tb.Shaded) && tb.Shaded[row]:
					return t.TableCellShaded
				default:
					return t.TableCell
				}
			})
	}

	out := build().String()
	if lipgloss.Width(out) > inner {
		out = build().Width(inner).String()
	}

	caption := t.Hint.Render(rowCount(len(tb.Rows)))
	return out + "\n" + caption
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%s rows", fmtNumber(n))
}
