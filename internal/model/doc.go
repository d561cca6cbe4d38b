// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and backend
// payloads.
//
// # Key Types
//
//   - Payload: the decoded /chat response (answer, sql, columns, rows, chart_data)
//   - ChartSpec / Dataset: the chart description attached to a payload
//   - Turn: one message in the list (a question, a reply, an error or a pending placeholder)
//   - Conversation: the ordered, append-only list of turns
//
// # Usage
//
//	conv := model.NewConversation()
//	q := conv.Append(model.NewUserTurn("top products by revenue", conv.NextSeq()))
//	ph := conv.Append(model.NewPendingTurn(q.Seq))
//	_ = conv.Replace(ph.ID, model.NewBotTurn(q.Seq, payload))
package model
