// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Header gradient, focus, assistant accents
var Purple = lipgloss.AdaptiveColor{Light: "#667EEA", Dark: "#8B9CF4"}

// PurpleDeep - Second header gradient stop
var PurpleDeep = lipgloss.AdaptiveColor{Light: "#764BA2", Dark: "#9F7AEA"}

// Cyan - Key hints, links, SQL disclosure
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Backend online
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, backend offline
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Error box background
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FEE2E2", Dark: "#4C0519"}

// Amber - Checking, chart interaction mode
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Header and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MESSAGE COLORS
// =============================================================================

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#667EEA", Dark: "#4C51BF"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#EEF2FF"}

var BotBubbleBg = lipgloss.AdaptiveColor{Light: "#F7F7F7", Dark: "#2A2A3C"}
var BotBubbleFg = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E5E7EB"}
var BotBubbleBorder = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#45475A"}

// =============================================================================
// RESULT COLORS
// =============================================================================

// TableHeaderBg - Header row of the result grid
var TableHeaderBg = lipgloss.AdaptiveColor{Light: "#667EEA", Dark: "#4C51BF"}

// TableShade - Even rows
var TableShade = lipgloss.AdaptiveColor{Light: "#F9F9F9", Dark: "#24243A"}

// SQLBoxBg - Expanded SQL panel
var SQLBoxBg = lipgloss.AdaptiveColor{Light: "#F4F4F8", Dark: "#11111B"}

// FocusRing marks the focused message.
var FocusRing = Purple

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet pairs each backend state with a shape so color is never
// the only cue.
type StatusIndicatorSet struct {
	Online   string
	Offline  string
	Checking string
}

// StatusIndicators are ASCII-only for terminal compatibility.
var StatusIndicators = StatusIndicatorSet{
	Online:   "[*]",
	Offline:  "[X]",
	Checking: "[ ]",
}
