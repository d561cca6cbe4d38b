// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns table cells and chart values into display strings.
//
// Numbers are rounded to whole units, half away from zero, and grouped with
// the separators of the configured locale:
//
//	format.Cell(json.Number("1234.6")) // "1,235"
//	format.Cell(nil)                   // ""
//	format.Cell("  42.5 ")             // "43"
//	format.Cell("N/A")                 // "N/A"
package format
