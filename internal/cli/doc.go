// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// querychat.
//
// # Key Types
//
//   - Command: the subcommand to run
//   - Args: parsed global and command-specific flags
//   - JSONResponse: the envelope every --json command prints
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdHealth:
//	    err = cli.HandleHealth(args)
//	}
//
// # Commands Overview
//
//   - tui: the interactive chat view (default)
//   - ask: one question, printed as it would appear in the chat
//   - chat: a line-mode REPL with history
//   - health: backend connectivity probe
//   - config: show, locate, create or edit the config file
//   - version, help
package cli
