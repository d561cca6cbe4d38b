// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/controller"
	"github.com/jeranaias/querychat/internal/export"
	"github.com/jeranaias/querychat/internal/model"
)

// noticeTTL is how long a status notice stays visible.
const noticeTTL = 4 * time.Second

// reloadBuffer is the number of config reloads that may queue while the
// event loop is busy. Further reloads are dropped; the next one carries the
// latest file anyway.
const reloadBuffer = 4

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// ProbeCmd runs one health check against hc.
func ProbeCmd(ctx context.Context, hc backend.HealthChecker) tea.Cmd {
	return func() tea.Msg {
		return HealthMsg{Result: backend.Probe(ctx, hc)}
	}
}

// AskCmd makes the backend call for p off the event loop.
func AskCmd(ctx context.Context, ctrl *controller.Controller, p *controller.Pending) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Pending: p, Outcome: ctrl.Await(ctx, p)}
	}
}

// ExportCmd writes conv with exporter. Charts must already be clones.
func ExportCmd(conv *model.Conversation, exporter export.Exporter, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		path, err := export.ExportToFile(conv, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// SaveChartCmd writes c (a clone) as a PNG to dir/name.
func SaveChartCmd(c *chart.Chart, dir, name string) tea.Cmd {
	return func() tea.Msg {
		path, err := c.SaveTo(dir, name)
		return ChartSavedMsg{Path: path, Err: err}
	}
}

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// CopyCmd puts text on the system clipboard.
func CopyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboardWrite(text)
		if err != nil {
			log.Printf("WARNING: CLIPBOARD | err=%v", err)
		}
		return CopiedMsg{Chars: len([]rune(text)), Err: err}
	}
}

// watchConfigCmd starts the config file watcher. Reloads are forwarded on
// a buffered channel that waitForReload drains.
func watchConfigCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		ch := make(chan ConfigReloadedMsg, reloadBuffer)
		w, err := config.Watch(path, func(cfg *config.Config, err error) {
			select {
			case ch <- ConfigReloadedMsg{Config: cfg, Err: err}:
			default:
				log.Printf("WARNING: CONFIG_RELOAD_DROPPED | path=%s", path)
			}
		})
		if err != nil {
			return watcherStartedMsg{err: err}
		}
		return watcherStartedMsg{watcher: w, reloads: ch}
	}
}

// waitForReload blocks until the next reload arrives.
func waitForReload(ch <-chan ConfigReloadedMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// expireNoticeCmd schedules the removal of notice id.
func expireNoticeCmd(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}
