// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// ThinkingSpinner - Simple line rotation
var ThinkingSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Frame returns frame i, wrapping around.
func (s SpinnerConfig) Frame(i int) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return s.Frames[i%len(s.Frames)]
}

// Bubble converts the config for use with bubbles/spinner.
func (s SpinnerConfig) Bubble() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}
