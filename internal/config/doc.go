// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for querychat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Where the chat backend lives and how to talk to it
//   - UIConfig, ChartConfig, ExportConfig, LoggingConfig: Presentation and output
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (QUERYCHAT_*)
//   - ~/.querychat/config.toml
//   - ~/.querychat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("WARNING: %v (using defaults)", err)
//	}
//
// Watch the file for edits:
//
//	w, err := config.Watch(path, func(cfg *config.Config, err error) { ... })
//	defer w.Close()
package config
