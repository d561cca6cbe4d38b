// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	Name         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble    lipgloss.Style
	BotBubble     lipgloss.Style
	FocusedBubble lipgloss.Style
	ErrorBubble   lipgloss.Style
	ErrorTitle    lipgloss.Style
	ErrorHint     lipgloss.Style
	RoleLabel     lipgloss.Style
	Timestamp     lipgloss.Style
	AnswerText    lipgloss.Style
	ThinkingText  lipgloss.Style
	Spinner       lipgloss.Style

	// ==========================================================================
	// RESULT STYLES
	// ==========================================================================

	SQLSummary      lipgloss.Style
	SQLBox          lipgloss.Style
	TableHeader     lipgloss.Style
	TableCell       lipgloss.Style
	TableCellShaded lipgloss.Style
	TableBorder     lipgloss.Style
	ChartBox        lipgloss.Style
	ChartBoxActive  lipgloss.Style
	LegendOn        lipgloss.Style
	LegendOff       lipgloss.Style
	Tooltip         lipgloss.Style
	Hint            lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	StatusBar        lipgloss.Style
	HealthOnline     lipgloss.Style
	HealthOffline    lipgloss.Style
	HealthChecking   lipgloss.Style
	ShortcutKey      lipgloss.Style
	ShortcutDesc     lipgloss.Style
	Notice           lipgloss.Style
	HelpBox          lipgloss.Style
}

// NewTheme creates a theme for the detected terminal background.
func NewTheme() *Theme {
	return NewThemeNamed("auto")
}

// NewThemeNamed creates a theme by config name. "dark" and "light" force the
// adaptive colors to that side; anything else follows the terminal.
func NewThemeNamed(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	name = strings.ToLower(strings.TrimSpace(name))
	var isDark bool
	switch name {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		name = "auto"
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// ChromaStyle returns the chroma style name for SQL highlighting.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return "monokai"
	}
	return "github"
}

// GlamourStyle returns the glamour standard style for markdown.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextInverse).
		Italic(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 2).
		MarginLeft(4)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.FocusedBubble = t.BotBubble.
		BorderForeground(FocusRing)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		BorderLeft(true).
		PaddingLeft(2).
		MarginRight(4)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorHint = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AnswerText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	// Results
	t.SQLSummary = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.SQLBox = lipgloss.NewStyle().
		Background(SQLBoxBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.TableHeader = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TableHeaderBg).
		Bold(true).
		Padding(0, 1)

	t.TableCell = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.TableCellShaded = t.TableCell.
		Background(TableShade)

	t.TableBorder = lipgloss.NewStyle().
		Foreground(Overlay)

	t.ChartBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.ChartBoxActive = t.ChartBox.
		BorderForeground(Amber)

	t.LegendOn = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.LegendOff = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.Tooltip = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TextSecondary).
		Padding(0, 1)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HealthOnline = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.HealthOffline = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.HealthChecking = lipgloss.NewStyle().
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Foreground(Emerald)

	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
}
