// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ChartType names how a chart is drawn.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
)

// Normalize maps the backend's type string onto a known type. Anything
// unrecognised is drawn as a bar chart.
func (t ChartType) Normalize() ChartType {
	switch ChartType(strings.ToLower(strings.TrimSpace(string(t)))) {
	case ChartLine:
		return ChartLine
	case ChartPie, "doughnut":
		return ChartPie
	default:
		return ChartBar
	}
}

// ChartSpec describes a chart in the shape the backend produces.
type ChartSpec struct {
	Type     ChartType `json:"type"`
	Labels   Labels    `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series of a chart.
type Dataset struct {
	Label           string  `json:"label"`
	Data            Values  `json:"data"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BackgroundColor Colors  `json:"backgroundColor,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
}

// Labels are the X-axis categories. Numbers and nulls are accepted and
// converted to their text form.
type Labels []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Labels) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Labels, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		text := strings.TrimSpace(string(item))
		if text == "null" {
			text = ""
		}
		out = append(out, text)
	}
	*l = out
	return nil
}

// Values is dataset data. Nulls and entries that are not numbers decode to
// 0, matching what the backend does when it builds the chart.
type Values []float64

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, item := range raw {
		out[i] = tolerantFloat(item)
	}
	*v = out
	return nil
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

func tolerantFloat(item json.RawMessage) float64 {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return 0
	}
	var s string
	if item[0] == '"' {
		if err := json.Unmarshal(item, &s); err != nil {
			return 0
		}
	} else {
		s = string(item)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Colors holds backgroundColor, which is a single color for line and bar
// datasets and a per-slice list for pie datasets.
type Colors []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Colors) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*c = Colors{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		*c = nil
		return nil
	}
	*c = many
	return nil
}

// MarshalJSON writes a single color back as a plain string.
func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// At returns the color for slice i, cycling through the list.
func (c Colors) At(i int) string {
	if len(c) == 0 {
		return ""
	}
	return c[i%len(c)]
}
