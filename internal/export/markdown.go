// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(e.options.title())))

	turns := settled(conv)
	for i, t := range turns {
		label := t.Role.DisplayName()
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(t.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		tree := render.Turn(t, e.options.Render)
		for _, b := range tree.Blocks {
			if s := e.formatBlock(t.ID, b); s != "" {
				sb.WriteString(s)
				sb.WriteString("\n\n")
			}
		}

		if i < len(turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from querychat on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func (e *MarkdownExporter) formatBlock(turnID string, b render.Block) string {
	switch b := b.(type) {
	case render.SQLPanel:
		return fmt.Sprintf("**%s**\n\n```sql\n%s\n```", b.Summary, strings.TrimSpace(b.SQL))
	case render.Text:
		return strings.TrimSpace(b.Body)
	case render.Table:
		return formatTable(b)
	case render.Chart:
		url, err := chartFor(turnID, b.Spec, e.options)
		if err != nil {
			return fmt.Sprintf("*Chart unavailable: %s*", err)
		}
		return fmt.Sprintf("![%s](%s)", b.DownloadName, url)
	case render.ErrorNotice:
		s := "> **Error:** " + oneLine(b.Message)
		if b.BackendURL != "" {
			s += "\n>\n> BACKEND_URL: " + b.BackendURL
		}
		return s
	default:
		return ""
	}
}

// formatTable writes a GFM table. Pipes and newlines in cells are escaped so
// a value can never break the grid.
func formatTable(tb render.Table) string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, h := range tb.Headers {
		sb.WriteString(" " + escapeCell(h) + " |")
	}
	sb.WriteString("\n|")
	for range tb.Headers {
		sb.WriteString(" --- |")
	}
	for _, row := range tb.Rows {
		sb.WriteString("\n|")
		for _, cell := range row {
			sb.WriteString(" " + escapeCell(cell) + " |")
		}
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return oneLine(s)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
