// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/querychat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the turns with their raw payloads.
// Rendering options do not apply; the output is the data, not a view of it.
type JSONExporter struct {
	options *Options
}

// Document is the top-level JSON export.
type Document struct {
	Title      string        `json:"title"`
	ExportedAt time.Time     `json:"exported_at"`
	Turns      []*model.Turn `json:"turns"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON format.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}
	doc := Document{
		Title:      e.options.title(),
		ExportedAt: time.Now().UTC(),
		Turns:      settled(conv),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
