// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the querychat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The chart series palette lives in the chart package because it
must match the backend's colors exactly.

# Color System (colors.go)

	UserBubbleBg / UserBubbleFg - the question bubble
	BotBubbleBg / BotBubbleFg   - the answer bubble
	TableHeaderBg / TableShade  - result grid header and shaded rows
	SQLBoxBg                    - the expanded SQL panel

# Theme System (theme.go)

	theme := styles.NewThemeNamed(cfg.UI.Theme) // "auto", "dark", "light"
	if theme.IsDark {
		// Dark palette in effect
	}

# Spinner (spinner.go)

ThinkingSpinner is the `|/-\` rotation shown in the loading placeholder.
*/
package styles
