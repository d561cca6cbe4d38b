// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

const samplePayload = `{
	"answer": "Revenue by month",
	"sql": "SELECT month, SUM(amount) FROM sales GROUP BY month",
	"columns": ["month", "revenue", "units"],
	"rows": [
		{"month": "2024-01", "revenue": 1234.5678901234567, "units": 10},
		{"month": "2024-02", "revenue": null}
	],
	"chart_data": {
		"type": "line",
		"labels": ["2024-01", "2024-02"],
		"datasets": [
			{"label": "revenue", "data": [1234.5, null], "borderColor": "rgb(102, 126, 234)", "backgroundColor": "rgba(102, 126, 234, 0.2)", "tension": 0.3},
			{"label": "units", "data": ["10", "n/a"]}
		]
	}
}`

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, "Revenue by month", p.Answer)
	assert.True(t, p.HasSQL())
	assert.True(t, p.HasTable())
	assert.True(t, p.HasChart())
	assert.Equal(t, []string{"month", "revenue", "units"}, p.Columns)

	// UseNumber keeps the original text.
	assert.Equal(t, json.Number("1234.5678901234567"), p.Cell(0, "revenue"))
	assert.Nil(t, p.Cell(1, "revenue"))
	assert.Nil(t, p.Cell(1, "units"), "missing column")
	assert.Nil(t, p.Cell(5, "month"), "out of range")

	spec := p.ChartData
	require.NotNil(t, spec)
	assert.Equal(t, ChartLine, spec.Type)
	require.Len(t, spec.Datasets, 2)
	assert.Equal(t, Values{1234.5, 0}, spec.Datasets[0].Data)
	assert.Equal(t, Values{10, 0}, spec.Datasets[1].Data)
	assert.Equal(t, Colors{"rgba(102, 126, 234, 0.2)"}, spec.Datasets[0].BackgroundColor)
	assert.InDelta(t, 0.3, spec.Datasets[0].Tension, 1e-9)
}

func TestParsePayload_AnswerOnly(t *testing.T) {
	p, err := ParsePayload([]byte(`{"answer":"hi"}`))
	require.NoError(t, err)
	assert.False(t, p.HasSQL())
	assert.False(t, p.HasTable())
	assert.False(t, p.HasChart())
}

func TestParsePayload_Invalid(t *testing.T) {
	_, err := ParsePayload([]byte(`<html>oops</html>`))
	assert.Error(t, err)
}

func TestPayload_HasTable(t *testing.T) {
	tests := []struct {
		name string
		p    *Payload
		want bool
	}{
		{"nil", nil, false},
		{"columns only", &Payload{Columns: []string{"a"}}, false},
		{"rows only", &Payload{Rows: []Row{{"a": 1}}}, false},
		{"both", &Payload{Columns: []string{"a"}, Rows: []Row{{"a": 1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.HasTable())
		})
	}
}

func TestPayload_HasSQLBlank(t *testing.T) {
	assert.False(t, (&Payload{SQL: "  \n\t"}).HasSQL())
}

// =============================================================================
// CHART SPEC TESTS
// =============================================================================

func TestChartType_Normalize(t *testing.T) {
	tests := []struct {
		in   ChartType
		want ChartType
	}{
		{"line", ChartLine},
		{"LINE", ChartLine},
		{"bar", ChartBar},
		{"pie", ChartPie},
		{"doughnut", ChartPie},
		{"radar", ChartBar},
		{"", ChartBar},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestColors_ListAndMarshal(t *testing.T) {
	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(`{"label":"x","data":[1,2],"backgroundColor":["a","b"]}`), &ds))
	assert.Equal(t, Colors{"a", "b"}, ds.BackgroundColor)
	assert.Equal(t, "a", ds.BackgroundColor.At(2))

	out, err := json.Marshal(Colors{"only"})
	require.NoError(t, err)
	assert.JSONEq(t, `"only"`, string(out))

	assert.Equal(t, "", Colors(nil).At(0))
}

func TestLabels_Tolerant(t *testing.T) {
	var l Labels
	require.NoError(t, json.Unmarshal([]byte(`["a", 2024, null]`), &l))
	assert.Equal(t, Labels{"a", "2024", ""}, l)
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendAndReplace(t *testing.T) {
	conv := NewConversation()
	seq := conv.NextSeq()
	assert.Equal(t, 1, seq)

	q := conv.Append(NewUserTurn("how many orders?", seq))
	ph := conv.Append(NewPendingTurn(seq))
	assert.Equal(t, 2, conv.Len())
	assert.Equal(t, 1, conv.PendingCount())

	reply := NewBotTurn(seq, &Payload{Answer: "42"})
	require.NoError(t, conv.Replace(ph.ID, reply))

	turns := conv.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, q.ID, turns[0].ID)
	assert.Equal(t, reply.ID, turns[1].ID)
	assert.Equal(t, 0, conv.PendingCount())

	_, ok := conv.Get(ph.ID)
	assert.False(t, ok, "placeholder should be gone")
	got, ok := conv.Get(reply.ID)
	require.True(t, ok)
	assert.Equal(t, "42", got.Payload.Answer)
	assert.Equal(t, 1, conv.IndexOf(reply.ID))
	assert.Equal(t, -1, conv.IndexOf("nope"))
}

func TestConversation_ReplaceErrors(t *testing.T) {
	conv := NewConversation()
	user := conv.Append(NewUserTurn("q", 1))

	err := conv.Replace("missing", NewBotTurn(1, nil))
	assert.True(t, errors.Is(err, ErrTurnNotFound))

	err = conv.Replace(user.ID, NewBotTurn(1, nil))
	assert.True(t, errors.Is(err, ErrNotPending))
	assert.Equal(t, 1, conv.Len())
}

func TestConversation_OutOfOrderReplies(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserTurn("first", 1))
	ph1 := conv.Append(NewPendingTurn(1))
	conv.Append(NewUserTurn("second", 2))
	ph2 := conv.Append(NewPendingTurn(2))

	require.NoError(t, conv.Replace(ph2.ID, NewBotTurn(2, &Payload{Answer: "two"})))
	require.NoError(t, conv.Replace(ph1.ID, NewBotTurn(1, &Payload{Answer: "one"})))

	turns := conv.Turns()
	assert.Equal(t, "one", turns[1].Payload.Answer)
	assert.Equal(t, "two", turns[3].Payload.Answer)
}

func TestConversation_VersionAndListeners(t *testing.T) {
	conv := NewConversation()
	var seen []string
	conv.OnChange(func(t *Turn) { seen = append(seen, t.ID) })

	v0 := conv.Version()
	a := conv.Append(NewUserTurn("q", 1))
	ph := conv.Append(NewPendingTurn(1))
	b := NewErrorTurn(1, "HTTP 500", "http://127.0.0.1:8000")
	require.NoError(t, conv.Replace(ph.ID, b))

	assert.Equal(t, v0+3, conv.Version())
	assert.Equal(t, []string{a.ID, ph.ID, b.ID}, seen)
}

func TestConversation_ScrollPin(t *testing.T) {
	conv := NewConversation()
	assert.True(t, conv.AtEnd())

	conv.Unpin()
	assert.False(t, conv.AtEnd())

	conv.Append(NewUserTurn("q", 1))
	assert.True(t, conv.AtEnd(), "append re-pins")

	conv.Unpin()
	conv.PinToEnd()
	assert.True(t, conv.AtEnd())
}

func TestConversation_TurnsIsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserTurn("q", 1))
	turns := conv.Turns()
	turns[0] = nil
	assert.NotNil(t, conv.Turns()[0])
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := conv.NextSeq()
			conv.Append(NewUserTurn("q", seq))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, conv.Len())
}

func TestTurn_CloneAndRole(t *testing.T) {
	e := NewErrorTurn(3, "boom", "http://x")
	c := e.Clone()
	c.Err.Text = "changed"
	assert.Equal(t, "boom", e.Err.Text)
	assert.True(t, e.IsError())
	assert.False(t, e.IsUser())
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleBot.DisplayName())
}
