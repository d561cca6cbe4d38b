// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller runs the submit cycle: validate the question, append
// it with a "Thinking..." placeholder, call the backend once, and swap the
// placeholder for the reply or an error.
//
// The cycle is split so the TUI can run the network call in a tea.Cmd:
//
//	p, ok := ctl.Begin(input)      // UI goroutine
//	out := ctl.Await(ctx, p)       // background
//	turn := ctl.Complete(p, out)   // UI goroutine
//
// Submit runs all three synchronously.
package controller
