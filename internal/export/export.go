// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/util"
)

// ErrNilConversation is returned when there is nothing to export.
var ErrNilConversation = errors.New("conversation is nil")

// DefaultTitle heads every exported document.
const DefaultTitle = "Sales Data Chatbot"

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// Title heads the document.
	Title string

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	// Default: "light"
	Theme string

	// Render tunes the block trees, e.g. whether SQL starts expanded.
	Render render.Options

	// ChartWidth and ChartHeight size embedded chart images.
	ChartWidth  int
	ChartHeight int

	// Charts holds live charts keyed by turn ID so the export keeps the
	// user's toggles and zoom. Missing entries are built from the payload.
	// Callers on another goroutine should pass clones.
	Charts map[string]*chart.Chart
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		Title:             DefaultTitle,
		IncludeTimestamps: true,
		Theme:             "light",
		ChartWidth:        800,
		ChartHeight:       400,
	}
}

func (o *Options) title() string {
	if strings.TrimSpace(o.Title) == "" {
		return DefaultTitle
	}
	return o.Title
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// New returns the exporter for a format name: "html", "markdown" (or "md")
// and "json".
func New(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportToFile exports a conversation to OutputDir/querychat-<timestamp><ext>
// and returns the path. The file is written atomically.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, Filename(time.Now(), exporter.FileExtension()))
	if err := util.AtomicWriteFileWithDir(path, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	log.Printf("EXPORT | format=%s path=%s bytes=%d turns=%d",
		exporter.MimeType(), path, len(content), conv.Len())
	return path, nil
}

// Filename is the export file name for a moment and extension.
func Filename(at time.Time, ext string) string {
	return "querychat-" + at.Format("20060102-150405") + ext
}

// ExportHTML exports to HTML format.
func ExportHTML(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewHTMLExporter(opts), opts)
}

// ExportMarkdown exports to Markdown format.
func ExportMarkdown(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewMarkdownExporter(opts), opts)
}

// ExportJSON exports to JSON format.
func ExportJSON(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewJSONExporter(opts), opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// settled returns the turns worth exporting: everything but placeholders.
func settled(conv *model.Conversation) []*model.Turn {
	turns := conv.Turns()
	out := turns[:0]
	for _, t := range turns {
		if !t.Pending {
			out = append(out, t)
		}
	}
	return out
}

// chartFor returns a PNG data URL for a turn's chart. A chart that cannot be
// built or drawn yields an error and never affects the rest of the turn.
func chartFor(turnID string, spec *model.ChartSpec, opts *Options) (string, error) {
	c := opts.Charts[turnID]
	if c == nil {
		var err error
		if c, err = chart.New(spec); err != nil {
			log.Printf("WARNING: EXPORT_CHART_FAILED | turn=%s err=%v", turnID, err)
			return "", err
		}
	}
	c.SetExportSize(opts.ChartWidth, opts.ChartHeight)
	url, err := c.DataURL()
	if err != nil {
		log.Printf("WARNING: EXPORT_CHART_FAILED | turn=%s err=%v", turnID, err)
		return "", err
	}
	return url, nil
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
