// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"time"
)

func TestNewThemeNamed(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantDark bool
		chroma   string
		glamour  string
	}{
		{"dark", "dark", true, "monokai", "dark"},
		{"LIGHT", "light", false, "github", "light"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			th := NewThemeNamed(tt.in)
			if th.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", th.Name, tt.wantName)
			}
			if th.IsDark != tt.wantDark {
				t.Errorf("IsDark = %v, want %v", th.IsDark, tt.wantDark)
			}
			if got := th.ChromaStyle(); got != tt.chroma {
				t.Errorf("ChromaStyle() = %q, want %q", got, tt.chroma)
			}
			if got := th.GlamourStyle(); got != tt.glamour {
				t.Errorf("GlamourStyle() = %q, want %q", got, tt.glamour)
			}
		})
	}
}

func TestNewThemeNamed_UnknownIsAuto(t *testing.T) {
	if got := NewThemeNamed("neon").Name; got != "auto" {
		t.Errorf("Name = %q, want auto", got)
	}
}

func TestThemeStylesRender(t *testing.T) {
	th := NewThemeNamed("dark")
	for name, out := range map[string]string{
		"user":   th.UserBubble.Render("hi"),
		"bot":    th.BotBubble.Render("hi"),
		"sql":    th.SQLSummary.Render("View SQL"),
		"header": th.TableHeader.Render("col"),
	} {
		if out == "" {
			t.Errorf("%s style rendered empty", name)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	s := ThinkingSpinner
	if s.Duration() != 100*time.Millisecond {
		t.Errorf("Duration() = %v, want 100ms", s.Duration())
	}
	want := []string{"|", "/", "-", "\\", "|"}
	for i, w := range want {
		if got := s.Frame(i); got != w {
			t.Errorf("Frame(%d) = %q, want %q", i, got, w)
		}
	}
	if got := (SpinnerConfig{}).Frame(3); got != "" {
		t.Errorf("empty Frame = %q", got)
	}

	b := s.Bubble()
	if len(b.Frames) != 4 || b.FPS != s.Duration() {
		t.Errorf("Bubble() = %+v", b)
	}
}
