// querychat - terminal client for the sales data chatbot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/cli"
	"github.com/jeranaias/querychat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdHealth:
		err = cli.HandleHealth(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		err = runTUI(args)
	}
	cli.HandleErrorAndExit(err, args.JSON)
}

func runTUI(args cli.Args) error {
	cfg, configPath, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := cfg.Logging.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		log.SetOutput(io.Discard)
	} else if f, err := tea.LogToFile(logPath, "querychat"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log.SetOutput(io.Discard)
	} else {
		defer f.Close()
	}

	// A --url override would be lost on the first reload.
	if args.URL != "" {
		configPath = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := chat.New(chat.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Context:    ctx,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("error running querychat: %w", err)
	}
	return nil
}
