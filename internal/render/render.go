// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/model"
)

// Payload renders a successful backend reply.
func Payload(p *model.Payload, opts Options) Tree {
	tree := Tree{Kind: KindBot}
	if p == nil {
		tree.Blocks = []Block{Text{}}
		return tree
	}

	if p.HasSQL() {
		tree.Blocks = append(tree.Blocks, SQLPanel{
			Summary:  SQLSummary,
			SQL:      p.SQL,
			Expanded: opts.SQLExpanded,
		})
	}

	tree.Blocks = append(tree.Blocks, Text{Body: p.Answer})

	if p.HasTable() {
		tree.Blocks = append(tree.Blocks, table(p))
	}

	if p.HasChart() {
		name := opts.ChartFilename
		if name == "" {
			name = DefaultChartFilename
		}
		tree.Blocks = append(tree.Blocks, Chart{Spec: p.ChartData, DownloadName: name})
	}
	return tree
}

func table(p *model.Payload) Table {
	headers := make([]string, len(p.Columns))
	copy(headers, p.Columns)

	rows := make([][]string, len(p.Rows))
	shaded := make([]bool, len(p.Rows))
	for i, row := range p.Rows {
		cells := make([]string, len(headers))
		for j, col := range headers {
			cells[j] = format.Cell(row[col])
		}
		rows[i] = cells
		shaded[i] = i%2 == 0
	}
	return Table{Headers: headers, Rows: rows, Shaded: shaded}
}

// User renders a submitted question.
func User(question string) Tree {
	return Tree{Kind: KindUser, Blocks: []Block{Text{Body: question}}}
}

// Thinking renders the loading placeholder.
func Thinking() Tree {
	return Tree{Kind: KindThinking, Blocks: []Block{Spinner{Label: ThinkingText}}}
}

// Error renders a failed request.
func Error(e *model.TurnError) Tree {
	notice := ErrorNotice{}
	if e != nil {
		notice.Message = e.Text
		notice.BackendURL = e.BackendURL
	}
	return Tree{Kind: KindError, Blocks: []Block{notice}}
}

// Turn renders any turn by dispatching on its content.
func Turn(t *model.Turn, opts Options) Tree {
	var tree Tree
	switch {
	case t.IsUser():
		tree = User(t.Question)
	case t.Pending:
		tree = Thinking()
	case t.Err != nil:
		tree = Error(t.Err)
	default:
		tree = Payload(t.Payload, opts)
	}
	tree.TurnID = t.ID
	return tree
}
