// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render maps chat turns onto an ordered tree of display blocks.
//
// The tree is target independent. The terminal (ui/components.Mount) and
// the HTML export both walk the same blocks, in this order:
//
//  1. SQLPanel  collapsed disclosure, only when sql is non-blank
//  2. Text      the answer, always present
//  3. Table     only when both columns and rows are non-empty
//  4. Chart     only when chart_data is present
//
// Rendering is pure. Payloads are never modified.
package render
