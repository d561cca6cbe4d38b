// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no locale has been configured.
const DefaultLocale = "en"

var printer atomic.Pointer[message.Printer]

func init() {
	printer.Store(message.NewPrinter(language.English))
}

// SetLocale switches the grouping separators used by Number and Cell.
func SetLocale(locale string) error {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	printer.Store(message.NewPrinter(tag))
	return nil
}

// decimalPattern accepts plain decimal notation only, so strings such as
// "0x10", "Inf" or "1_000" stay text.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Number rounds f to the nearest integer, half away from zero, and groups
// the digits for the current locale. Non-finite input yields "".
func Number(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	r := math.Round(f)
	if r == 0 {
		// Covers -0 and values in (-0.5, 0.5).
		r = 0
	}
	p := printer.Load()
	if r >= math.MinInt64 && r < math.MaxInt64 {
		return p.Sprintf("%d", int64(r))
	}
	bi, _ := big.NewFloat(r).Int(nil)
	return groupBig(bi.String(), p.Sprintf("%d", 1000))
}

// Fixed formats f with exactly places fraction digits, grouped for the
// current locale. Axis ticks use it when their step is below one.
func Fixed(f float64, places int) string {
	if places <= 0 {
		return Number(f)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return printer.Load().Sprint(number.Decimal(f,
		number.MinFractionDigits(places),
		number.MaxFractionDigits(places)))
}

// groupBig groups a decimal integer string with the separator the printer
// uses for thousands, taken from a formatted sample.
func groupBig(digits, sample string) string {
	sep := strings.TrimSuffix(strings.TrimPrefix(sample, "1"), "000")
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Cell formats a table cell value.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return numberString(string(x), string(x))
	case string:
		return numberString(x, x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return integer(int64(x))
	case int8:
		return integer(int64(x))
	case int16:
		return integer(int64(x))
	case int32:
		return integer(int64(x))
	case int64:
		return integer(x)
	case uint:
		return unsigned(uint64(x))
	case uint8:
		return unsigned(uint64(x))
	case uint16:
		return unsigned(uint64(x))
	case uint32:
		return unsigned(uint64(x))
	case uint64:
		return unsigned(x)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// IsNumeric reports whether Cell would treat v as a number.
func IsNumeric(v any) bool {
	switch x := v.(type) {
	case json.Number:
		_, ok := parseDecimal(string(x))
		return ok
	case string:
		_, ok := parseDecimal(x)
		return ok
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func integer(n int64) string {
	return printer.Load().Sprintf("%d", n)
}

func unsigned(n uint64) string {
	return printer.Load().Sprintf("%d", n)
}

// numberString formats s as a number when it is one and returns fallback
// otherwise.
func numberString(s, fallback string) string {
	trimmed := strings.TrimSpace(s)
	// Exact integers skip float conversion so long IDs keep every digit.
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil && decimalPattern.MatchString(trimmed) {
		return integer(n)
	}
	if n, err := strconv.ParseUint(trimmed, 10, 64); err == nil && decimalPattern.MatchString(trimmed) {
		return unsigned(n)
	}
	f, ok := parseDecimal(trimmed)
	if !ok {
		return fallback
	}
	return Number(f)
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
