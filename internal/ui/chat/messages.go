// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/controller"
)

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// HealthMsg reports the outcome of a connectivity probe.
type HealthMsg struct {
	Result backend.ProbeResult
}

// ReplyMsg carries a finished backend call back to the event loop, which
// then completes the pending turn.
type ReplyMsg struct {
	Pending *controller.Pending
	Outcome controller.Outcome
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent by the config watcher after the file changed.
// Err is set when the new file failed to load; the old config stays active.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// watcherStartedMsg hands the running watcher to the model.
type watcherStartedMsg struct {
	watcher *config.Watcher
	reloads <-chan ConfigReloadedMsg
	err     error
}

// =============================================================================
// ACTION RESULTS
// =============================================================================

// ExportDoneMsg reports a finished conversation export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ChartSavedMsg reports a finished PNG save.
type ChartSavedMsg struct {
	Path string
	Err  error
}

// CopiedMsg reports a clipboard write.
type CopiedMsg struct {
	Chars int
	Err   error
}

// noticeExpiredMsg clears the status notice if it is still the one that
// scheduled it.
type noticeExpiredMsg struct {
	id int
}
