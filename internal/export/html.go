// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations as a standalone chat page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}
	title := html.EscapeString(e.options.title())

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", title))
	sb.WriteString("    <meta name=\"generator\" content=\"querychat\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))

	sb.WriteString("    <div class=\"chat-container\">\n")
	sb.WriteString("        <div class=\"chat-header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", title))
	sb.WriteString("        </div>\n")
	sb.WriteString("        <div class=\"chat-messages\">\n")
	for _, t := range settled(conv) {
		sb.WriteString(e.renderTurn(t))
	}
	sb.WriteString("        </div>\n")
	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>querychat</strong> on %s</p>\n",
		html.EscapeString(formatTimestamp(time.Now()))))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderTurn mounts one turn's block tree as a message div.
func (e *HTMLExporter) renderTurn(t *model.Turn) string {
	tree := render.Turn(t, e.options.Render)

	class := "message bot-message"
	switch tree.Kind {
	case render.KindUser:
		class = "message user-message"
	case render.KindError:
		class = "message bot-message error-message"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <div class=\"%s\">\n", class))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                <span class=\"timestamp\">%s</span>\n",
			formatShortTimestamp(t.Timestamp)))
	}
	for _, b := range tree.Blocks {
		sb.WriteString(e.renderBlock(t.ID, b))
	}
	sb.WriteString("            </div>\n")
	return sb.String()
}

func (e *HTMLExporter) renderBlock(turnID string, b render.Block) string {
	switch b := b.(type) {
	case render.SQLPanel:
		open := ""
		if b.Expanded {
			open = " open"
		}
		return fmt.Sprintf("                <details%s><summary>%s</summary><pre><code class=\"language-sql\">%s</code></pre></details>\n",
			open, html.EscapeString(b.Summary), html.EscapeString(b.SQL))
	case render.Text:
		return fmt.Sprintf("                <p>%s</p>\n", html.EscapeString(b.Body))
	case render.Table:
		return renderTable(b)
	case render.Chart:
		return e.renderChart(turnID, b)
	case render.ErrorNotice:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("                <p>Error: %s</p>\n", html.EscapeString(b.Message)))
		if b.BackendURL != "" {
			sb.WriteString(fmt.Sprintf("                <p class=\"backend-url\">BACKEND_URL: %s</p>\n",
				html.EscapeString(b.BackendURL)))
		}
		return sb.String()
	default:
		return ""
	}
}

// renderTable writes the grid with a header row and shaded even rows.
func renderTable(tb render.Table) string {
	var sb strings.Builder
	sb.WriteString("                <div class=\"table-container\">\n")
	sb.WriteString("                <table>\n")
	sb.WriteString("                    <thead><tr>")
	for _, h := range tb.Headers {
		sb.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	sb.WriteString("</tr></thead>\n")
	sb.WriteString("                    <tbody>\n")
	for i, row := range tb.Rows {
		if i < len(tb.Shaded) && tb.Shaded[i] {
			sb.WriteString("                    <tr class=\"shaded\">")
		} else {
			sb.WriteString("                    <tr>")
		}
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("                    </tbody>\n")
	sb.WriteString("                </table>\n")
	sb.WriteString("                </div>\n")
	return sb.String()
}

// renderChart embeds the chart image with a download link. A failed chart
// leaves a notice in its place.
func (e *HTMLExporter) renderChart(turnID string, b render.Chart) string {
	url, err := chartFor(turnID, b.Spec, e.options)
	if err != nil {
		return fmt.Sprintf("                <p class=\"chart-error\">Chart unavailable: %s</p>\n",
			html.EscapeString(err.Error()))
	}
	name := html.EscapeString(b.DownloadName)

	var sb strings.Builder
	sb.WriteString("                <div class=\"chart-container\">\n")
	sb.WriteString(fmt.Sprintf("                    <img src=\"%s\" alt=\"Chart\">\n", url))
	sb.WriteString(fmt.Sprintf("                    <a class=\"download-link\" href=\"%s\" download=\"%s\">Download %s</a>\n",
		url, name, name))
	sb.WriteString("                </div>\n")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const htmlCSS = `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        .light-theme {
            --page-bg: #f0f2f5;
            --panel-bg: #ffffff;
            --messages-bg: #f9f9f9;
            --bot-bg: #e8e8e8;
            --bot-fg: #333333;
            --muted: #6b7280;
            --border: #dddddd;
            --shade: #f2f2f2;
            --code-bg: #f4f4f4;
            --error: #b91c1c;
        }

        .dark-theme {
            --page-bg: #111827;
            --panel-bg: #1f2937;
            --messages-bg: #111827;
            --bot-bg: #374151;
            --bot-fg: #f3f4f6;
            --muted: #9ca3af;
            --border: #4b5563;
            --shade: #2b3543;
            --code-bg: #0b1220;
            --error: #fca5a5;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            background: var(--page-bg);
            color: var(--bot-fg);
            padding: 20px;
        }

        .chat-container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--panel-bg);
            border-radius: 12px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }

        .chat-header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: #ffffff;
            padding: 20px;
            text-align: center;
        }

        .chat-messages {
            background: var(--messages-bg);
            padding: 20px;
        }

        .message {
            margin-bottom: 15px;
            display: flex;
            flex-direction: column;
        }

        .user-message {
            align-items: flex-end;
        }

        .bot-message {
            align-items: flex-start;
        }

        .message p {
            max-width: 80%;
            padding: 10px 15px;
            border-radius: 18px;
            white-space: pre-wrap;
            word-wrap: break-word;
        }

        .user-message p {
            background: #667eea;
            color: #ffffff;
        }

        .bot-message p {
            background: var(--bot-bg);
            color: var(--bot-fg);
        }

        .error-message p {
            color: var(--error);
        }

        .timestamp {
            font-size: 12px;
            color: var(--muted);
            margin-bottom: 4px;
        }

        details {
            margin-bottom: 8px;
            max-width: 100%;
        }

        summary {
            cursor: pointer;
            color: #667eea;
            font-weight: 600;
        }

        pre {
            background: var(--code-bg);
            border: 1px solid var(--border);
            border-radius: 6px;
            padding: 10px;
            margin-top: 6px;
            overflow-x: auto;
            font-family: "SF Mono", Monaco, Consolas, monospace;
            font-size: 13px;
        }

        .table-container {
            max-width: 100%;
            overflow-x: auto;
            margin-top: 10px;
        }

        table {
            border-collapse: collapse;
            font-size: 14px;
        }

        th, td {
            border: 1px solid var(--border);
            padding: 6px 10px;
            text-align: left;
        }

        th {
            background: #667eea;
            color: #ffffff;
        }

        tr.shaded {
            background: var(--shade);
        }

        .chart-container {
            margin-top: 10px;
            max-width: 100%;
        }

        .chart-container img {
            max-width: 100%;
            display: block;
        }

        .download-link {
            display: inline-block;
            margin-top: 6px;
            color: #667eea;
        }

        .footer {
            padding: 12px 20px;
            text-align: center;
            font-size: 13px;
            color: var(--muted);
            border-top: 1px solid var(--border);
        }
    </style>
`
