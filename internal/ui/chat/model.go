// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/controller"
	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/ui/components"
	"github.com/jeranaias/querychat/internal/ui/styles"
)

// WelcomeText is the greeting shown before the first question. It is not
// part of the conversation and is never exported.
const WelcomeText = "Hello! Ask me anything about your sales data, for example \"What were total sales by month?\""

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options wires the model to its collaborators.
type Options struct {
	Config *config.Config

	// ConfigPath is watched for hot reload. Empty disables watching.
	ConfigPath string

	Theme  *styles.Theme
	Client *backend.Client

	// Store is the conversation to show. Nil starts a new one.
	Store *model.Conversation

	// Context is cancelled when the program exits.
	Context context.Context
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	theme  *styles.Theme
	client *backend.Client
	ctrl   *controller.Controller
	store  *model.Conversation

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	thinking components.Thinking
	header   *components.Header
	status   *components.StatusBar
	keys     KeyMap

	health backend.HealthState

	// focusID is the focused bot turn; empty means the input has focus.
	focusID string

	// Per-turn view state, keyed by turn ID.
	expanded map[string]bool
	charts   map[string]*chart.Chart
	chartRev map[string]int
	mounts   map[string]mounted
	spans    []span

	// Chart-interaction mode on the focused turn's chart.
	chartMode bool
	dragging  bool
	dragX     int

	showHelp bool
	helpView string

	notice   string
	noticeID int

	configPath string
	watcher    *config.Watcher
	reloads    <-chan ConfigReloadedMsg
}

// New creates a new chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewThemeNamed(cfg.UI.Theme)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	client := opts.Client
	if client == nil {
		client = backend.New(BackendConfig(cfg))
	}

	ctrl := controller.New(controller.Config{
		BackendURL:        client.BaseURL(),
		BlockWhilePending: cfg.UI.BlockWhilePending,
	}, opts.Store, client)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Ask a question about your sales data..."
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.CharLimit = 2000
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	status := components.NewStatusBar(theme)
	status.BackendURL = client.BaseURL()

	m := Model{
		ctx:        ctx,
		cfg:        cfg,
		theme:      theme,
		client:     client,
		ctrl:       ctrl,
		store:      ctrl.Store(),
		viewport:   vp,
		input:      ti,
		thinking:   components.NewThinking(theme),
		header:     components.NewHeader(theme),
		status:     status,
		keys:       DefaultKeyMap(),
		health:     backend.HealthUnknown,
		expanded:   make(map[string]bool),
		charts:     make(map[string]*chart.Chart),
		chartRev:   make(map[string]int),
		mounts:     make(map[string]mounted),
		configPath: opts.ConfigPath,
	}
	if m.store.PendingCount() > 0 {
		m.thinking.Start()
	}
	m.refresh()
	return m
}

// BackendConfig maps the [backend] config section onto a client config.
func BackendConfig(cfg *config.Config) backend.Config {
	return backend.Config{
		URL:             cfg.Backend.URL,
		Timeout:         cfg.Backend.Timeout(),
		HealthTimeout:   cfg.Backend.HealthTimeout(),
		MaxResponseSize: cfg.Backend.MaxResponseBytes(),
		RatePerSec:      cfg.Backend.RatePerSec,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the health probe, the spinner and the config watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		ProbeCmd(m.ctx, m.client),
		m.thinking.Tick(),
		watchConfigCmd(m.configPath),
	)
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Store returns the conversation.
func (m Model) Store() *model.Conversation { return m.store }

// Controller returns the submission controller.
func (m Model) Controller() *controller.Controller { return m.ctrl }

// Health returns the last probe state.
func (m Model) Health() backend.HealthState { return m.health }

// FocusedID returns the focused turn, or "" when the input has focus.
func (m Model) FocusedID() string { return m.focusID }

// ChartMode reports whether chart interaction is active.
func (m Model) ChartMode() bool { return m.chartMode }

// ShowingHelp reports whether the help overlay is open.
func (m Model) ShowingHelp() bool { return m.showHelp }

// Notice returns the current status notice.
func (m Model) Notice() string { return m.notice }

// Chart returns the live chart of a turn, if it has been mounted.
func (m Model) Chart(turnID string) *chart.Chart { return m.charts[turnID] }

// SQLExpanded reports whether a turn's SQL panel is open.
func (m Model) SQLExpanded(turnID string) bool {
	if v, ok := m.expanded[turnID]; ok {
		return v
	}
	return m.cfg.UI.SQLExpanded
}

// Close stops the config watcher. Call it after the program exits.
func (m Model) Close() {
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			log.Printf("WARNING: CONFIG_WATCH_CLOSE | err=%v", err)
		}
	}
}
