// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "deep", "out.html")

	if err := AtomicWriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := AtomicWriteFile(path, []byte("initial"), 0600); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0600); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "updated" {
		t.Errorf("got %q, want %q", content, "updated")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("perm = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestAtomicWriteFile_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	if err := AtomicWriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"utf8", "매출 합계 보고서", 5, "매출..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.max); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"fits", "abc", 5, "abc"},
		{"ascii", "abcdefgh", 6, "abc..."},
		{"wide runes", "한국어입니다", 7, "한국..."},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if StringWidth(got) > tt.max {
				t.Errorf("width %d exceeds %d", StringWidth(got), tt.max)
			}
		})
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d", got)
	}
	if got := StringWidth("한국"); got != 4 {
		t.Errorf("StringWidth(한국) = %d", got)
	}
}

func TestPad(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("ab", 4); got != "  ab" {
		t.Errorf("PadLeft = %q", got)
	}
}

func TestStripControl(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "total sales: 10", "total sales: 10"},
		{"keeps newlines", "a\nb\tc", "a\nb\tc"},
		{"csi color", "\x1b[31mred\x1b[0m", "red"},
		{"osc title", "\x1b]0;pwned\x07text", "text"},
		{"bell and cr", "a\x07b\rc", "abc"},
		{"markup untouched", "<b>bold</b>", "<b>bold</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripControl(tt.input); got != tt.want {
				t.Errorf("StripControl(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
