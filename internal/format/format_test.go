// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"float rounds up", 1234.5, "1,235"},
		{"float rounds down", 999.4, "999"},
		{"float 1234.6", 1234.6, "1,235"},
		{"negative half away from zero", -2.5, "-3"},
		{"negative zero", -0.4, "0"},
		{"json number", json.Number("1234567.89"), "1,234,568"},
		{"json integer", json.Number("9007199254740993"), "9,007,199,254,740,993"},
		{"int", 42, "42"},
		{"int64", int64(-1000), "-1,000"},
		{"uint8", uint8(7), "7"},
		{"uint64 past 2^53 keeps digits", uint64(9007199254740993), "9,007,199,254,740,993"},
		{"uint64 max", uint64(math.MaxUint64), "18,446,744,073,709,551,615"},
		{"json integer past int64", json.Number("18446744073709551615"), "18,446,744,073,709,551,615"},
		{"int32", int32(-123456), "-123,456"},
		{"numeric string", " 42.5 ", "43"},
		{"numeric string exponent", "1e3", "1,000"},
		{"empty string", "", ""},
		{"text", "Seoul", "Seoul"},
		{"hex stays text", "0x10", "0x10"},
		{"inf stays text", "Inf", "Inf"},
		{"nan stays text", "NaN", "NaN"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"object", map[string]any{"a": 1}, `{"a":1}`},
		{"array", []any{1, "x"}, `[1,"x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cell(tt.in))
		})
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "0", Number(0))
	assert.Equal(t, "1,000,000", Number(999999.5))
	assert.Equal(t, "", Number(math.NaN()))
	assert.Equal(t, "", Number(math.Inf(1)))
	assert.Equal(t, "100,000,000,000,000,000,000", Number(1e20))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(1.5))
	assert.True(t, IsNumeric(json.Number("3")))
	assert.True(t, IsNumeric(" 7 "))
	assert.False(t, IsNumeric("abc"))
	assert.False(t, IsNumeric(nil))
	assert.False(t, IsNumeric(true))
}

func TestSetLocale(t *testing.T) {
	t.Cleanup(func() { _ = SetLocale(DefaultLocale) })

	require.NoError(t, SetLocale("de"))
	assert.Equal(t, "1.235", Cell(1234.5))

	require.NoError(t, SetLocale(""))
	assert.Equal(t, "1,235", Cell(1234.5))

	assert.Error(t, SetLocale("not a locale!!"))
}

func TestGroupBig(t *testing.T) {
	assert.Equal(t, "1,234,567", groupBig("1234567", "1,000"))
	assert.Equal(t, "-123", groupBig("-123", "1,000"))
	assert.Equal(t, "123.456", groupBig("123456", "1.000"))
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "1,234.5", Fixed(1234.5, 1))
	assert.Equal(t, "0.25", Fixed(0.25, 2))
	assert.Equal(t, "1,235", Fixed(1234.5, 0))
	assert.Equal(t, "", Fixed(math.NaN(), 2))
}
