// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation to a file a browser or editor can
// open.
//
// # Supported Formats
//
//   - HTML: the chat as a standalone page, with collapsible SQL, shaded
//     tables and charts embedded as PNG data URLs
//   - Markdown: fenced SQL and GFM tables
//   - JSON: the turns with their raw backend payloads
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OutputDir = cfg.Export.Dir
//	path, err := export.ExportHTML(conv, opts)
//
// Pending placeholders are never exported.
package export
