// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across querychat.
//
// It covers three things:
//   - width-aware truncation and padding for terminal cells (go-runewidth)
//   - stripping of terminal control sequences from backend text
//   - atomic file writes for exports and config saves
package util
