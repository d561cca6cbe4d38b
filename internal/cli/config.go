// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)   Print the effective configuration as TOML
//	path             Print the config file location
//	init [--force]   Write a config file with the defaults
//	get KEY          Print one value
//	set KEY VALUE    Change one value and save
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/querychat/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ActivePath()
		if err != nil {
			return NewCommandError("config", "locate", "no home directory", err)
		}
		path = p
	}
	return runConfig(os.Stdout, args, path)
}

func runConfig(w io.Writer, args Args, path string) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show", "list":
		cfg, _, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return showConfig(w, args, cfg)

	case "path":
		_, statErr := os.Stat(path)
		if args.JSON {
			return NewJSONResponse("config path", ConfigPathData{Path: path, Exists: statErr == nil}).Fprint(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "init":
		return initConfig(w, path, args.Force)

	case "get":
		if args.ConfigKey == "" {
			return ErrMissingArgument("KEY", "querychat config get backend.url")
		}
		cfg, _, err := LoadConfig(args)
		if err != nil {
			return err
		}
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return NewCommandError("config", "get", args.ConfigKey, err)
		}
		fmt.Fprintln(w, val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return ErrMissingArgument("KEY VALUE", "querychat config set ui.theme dark")
		}
		return setConfig(w, path, args.ConfigKey, args.ConfigVal)

	default:
		return &UsageError{
			Reason:  fmt.Sprintf("unknown config subcommand %q", args.Subcommand),
			Example: "querychat config show",
		}
	}
}

func showConfig(w io.Writer, args Args, cfg *config.Config) error {
	if args.JSON {
		return NewJSONResponse("config show", cfg).Fprint(w)
	}
	return toml.NewEncoder(w).Encode(cfg)
}

// initConfig writes the defaults to path unless a file is already there.
func initConfig(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return &UsageError{
			Reason:  fmt.Sprintf("%s already exists", path),
			Example: "querychat config init --force",
		}
	}
	if err := save(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write "+path, err)
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

// setConfig changes one key in the file at path. A missing file starts from
// the defaults.
func setConfig(w io.Writer, path, key, value string) error {
	cfg, err := config.LoadFromPath(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return NewCommandError("config", "set", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := save(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not write "+path, err)
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

func save(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
