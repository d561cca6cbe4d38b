// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/querychat/internal/model"
)

// SQLSummary is the fixed label of the SQL disclosure.
const SQLSummary = "View SQL"

// ThinkingText is shown in the loading placeholder.
const ThinkingText = "Thinking..."

// DefaultChartFilename is the download name used when none is configured.
const DefaultChartFilename = "chart.png"

// Kind identifies how a tree is laid out.
type Kind int

const (
	KindUser Kind = iota
	KindBot
	KindThinking
	KindError
)

// String returns the CSS-style class suffix for the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindThinking:
		return "thinking"
	case KindError:
		return "error"
	default:
		return "bot"
	}
}

// Block is one piece of a rendered message.
type Block interface {
	block()
}

// SQLPanel is the collapsible query display.
type SQLPanel struct {
	Summary  string
	SQL      string
	Expanded bool
}

// Text is a plain-text paragraph. It is never interpreted as markup.
type Text struct {
	Body string
}

// Table is the result grid. Shaded[i] marks row i for alternate shading.
type Table struct {
	Headers []string
	Rows    [][]string
	Shaded  []bool
}

// Chart is the placeholder for an interactive chart.
type Chart struct {
	Spec         *model.ChartSpec
	DownloadName string
}

// ErrorNotice is the failure shown in an error turn.
type ErrorNotice struct {
	Message    string
	BackendURL string
}

// Spinner marks a loading placeholder.
type Spinner struct {
	Label string
}

func (SQLPanel) block()    {}
func (Text) block()        {}
func (Table) block()       {}
func (Chart) block()       {}
func (ErrorNotice) block() {}
func (Spinner) block()     {}

// Tree is the rendered form of one turn.
type Tree struct {
	TurnID string
	Kind   Kind
	Blocks []Block
}

// Options tune rendering.
type Options struct {
	// SQLExpanded opens the SQL panel initially.
	SQLExpanded bool

	// ChartFilename is the download name for chart images.
	ChartFilename string
}

// SQL returns the tree's SQL panel, if any.
func (t Tree) SQL() (*SQLPanel, bool) {
	for _, b := range t.Blocks {
		if p, ok := b.(SQLPanel); ok {
			return &p, true
		}
	}
	return nil, false
}

// Chart returns the tree's chart block, if any.
func (t Tree) Chart() (*Chart, bool) {
	for _, b := range t.Blocks {
		if c, ok := b.(Chart); ok {
			return &c, true
		}
	}
	return nil, false
}
