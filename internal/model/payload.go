// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Row is one result row keyed by column name. Values are whatever the JSON
// decoder produced with UseNumber: nil, json.Number, string, bool, or a
// nested map/slice.
type Row map[string]any

// Payload is the body returned by the backend's /chat endpoint.
type Payload struct {
	Answer    string     `json:"answer"`
	SQL       string     `json:"sql,omitempty"`
	Columns   []string   `json:"columns,omitempty"`
	Rows      []Row      `json:"rows,omitempty"`
	ChartData *ChartSpec `json:"chart_data,omitempty"`
}

// DecodePayload reads a payload from r. Numbers are kept as json.Number so
// table cells keep the precision the backend sent.
func DecodePayload(r io.Reader) (*Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// ParsePayload is DecodePayload over a byte slice.
func ParsePayload(data []byte) (*Payload, error) {
	return DecodePayload(bytes.NewReader(data))
}

// HasSQL reports whether the payload carries a non-blank SQL string.
func (p *Payload) HasSQL() bool {
	return p != nil && strings.TrimSpace(p.SQL) != ""
}

// HasTable reports whether both columns and rows are non-empty.
func (p *Payload) HasTable() bool {
	return p != nil && len(p.Columns) > 0 && len(p.Rows) > 0
}

// HasChart reports whether chart_data was present.
func (p *Payload) HasChart() bool {
	return p != nil && p.ChartData != nil
}

// Cell returns the value at row i for column col, or nil when the row does
// not have it.
func (p *Payload) Cell(i int, col string) any {
	if p == nil || i < 0 || i >= len(p.Rows) {
		return nil
	}
	return p.Rows[i][col]
}
