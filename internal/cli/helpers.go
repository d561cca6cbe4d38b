// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Config loading, logging and client setup shared by the
// commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/format"
	"github.com/jeranaias/querychat/internal/ui/chat"
)

// LoadConfig resolves the configuration for a command. --config selects the
// file; otherwise the default TOML/JSON lookup is used. A broken default file
// is reported on stderr and the defaults are used. --url wins over the file.
// The locale is applied to number formatting. It also returns the path to
// watch for reloads.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)

	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		path = args.ConfigPath
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, "", err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v; using defaults\n", WarningStyle.Render("[WARN]"), err)
		}
		path, _ = config.ActivePath()
	}

	if args.URL != "" {
		cfg.Backend.URL = args.URL
		if err := cfg.Validate(); err != nil {
			return nil, "", err
		}
	}
	if err := format.SetLocale(cfg.UI.Locale); err != nil {
		log.Printf("WARNING: LOCALE | locale=%s err=%v", cfg.UI.Locale, err)
	}
	return cfg, path, nil
}

// SetupLogging routes the standard logger for line-mode commands: stderr
// with --verbose or logging.debug, otherwise nowhere.
func SetupLogging(args Args, cfg *config.Config) {
	if args.Verbose || cfg.Logging.Debug {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.Ltime | log.Lmicroseconds)
		return
	}
	log.SetOutput(io.Discard)
}

// newClient builds the backend client for cfg.
func newClient(cfg *config.Config) *backend.Client {
	return backend.New(chat.BackendConfig(cfg))
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
