// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat for terminals where the full chat view is not
// wanted.
//
// Command: chat
//
// Each question is answered in place, laid out like the chat view. Input
// history persists across runs in the config directory.
//
// Slash commands:
//
//	/help              Show commands
//	/sql               Toggle showing SQL expanded
//	/export [format]   Export the conversation (html, markdown, json)
//	/health            Check the backend
//	/clear             Start a new conversation
//	/quit              Leave
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/controller"
	"github.com/jeranaias/querychat/internal/export"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/chat"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input per call. It returns io.EOF when the
// user is done.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner-backed reader with history loaded.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation. Ctrl+C and Ctrl+D both
// end the session.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes the history file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		log.Printf("WARNING: CHAT_HISTORY | path=%s err=%v", c.historyFile, err)
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state of one REPL run.
type ChatSession struct {
	Config  *config.Config
	Client  *backend.Client
	Ctrl    *controller.Controller
	ShowSQL bool
	Width   int

	StartTime time.Time
	Asked     int
	Failed    int

	// charts keeps each answer's chart for export.
	charts map[string]*chart.Chart
}

// NewChatSession creates a session against client.
func NewChatSession(cfg *config.Config, client *backend.Client, width int) *ChatSession {
	return &ChatSession{
		Config:    cfg,
		Client:    client,
		Ctrl:      controller.New(controller.Config{BackendURL: client.BaseURL()}, nil, client),
		ShowSQL:   cfg.UI.SQLExpanded,
		Width:     width,
		StartTime: time.Now(),
		charts:    make(map[string]*chart.Chart),
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	SetupLogging(args, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	session := NewChatSession(cfg, newClient(cfg), GetTerminalWidth())
	reader := NewChatCLI()
	defer reader.Close()

	return runChat(ctx, os.Stdout, session, reader)
}

// runChat is the REPL loop.
func runChat(ctx context.Context, w io.Writer, session *ChatSession, in lineReader) error {
	printWelcome(w, session)

	for {
		input, err := in.ReadInput(PromptStyle.Render("> "))
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := handleSlashCommand(ctx, w, session, input)
			if err != nil {
				fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
			}
			if quit {
				break
			}
			continue
		}

		processQuestion(ctx, w, session, input)
	}

	printExitSummary(w, session)
	return nil
}

// processQuestion asks one question and prints the answer.
func processQuestion(ctx context.Context, w io.Writer, session *ChatSession, question string) {
	fmt.Fprintln(w, DimStyle.Render(render.ThinkingText))

	turn, ok := session.Ctrl.Submit(ctx, question)
	if !ok {
		return
	}
	session.Asked++
	if turn.Err != nil {
		session.Failed++
	}

	c := buildChart(turn, session.Config)
	if c != nil {
		session.charts[turn.ID] = c
	}
	fmt.Fprintln(w, mountAnswer(turn, session.Config, c, session.Width, session.ShowSQL))
}

// handleSlashCommand runs a /command. It reports true when the session
// should end.
func handleSlashCommand(ctx context.Context, w io.Writer, session *ChatSession, input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	rest := fields[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/?":
		printHelp(w)

	case "/sql":
		session.ShowSQL = !session.ShowSQL
		state := "collapsed"
		if session.ShowSQL {
			state = "expanded"
		}
		fmt.Fprintf(w, "SQL panels are now %s.\n", state)

	case "/export":
		format := session.Config.Export.Format
		if len(rest) > 0 {
			format = rest[0]
		}
		path, err := exportSession(session, format)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%s Exported to %s\n", SuccessStyle.Render("[OK]"), path)

	case "/health":
		res := backend.Probe(ctx, session.Client)
		printProbe(w, res)

	case "/clear":
		session.Ctrl = controller.New(controller.Config{BackendURL: session.Client.BaseURL()}, nil, session.Client)
		session.charts = make(map[string]*chart.Chart)
		fmt.Fprintln(w, "Started a new conversation.")

	default:
		return false, &UsageError{Reason: fmt.Sprintf("unknown command %s", cmd), Example: "/help"}
	}
	return false, nil
}

// exportSession writes the conversation in format to export.dir.
func exportSession(session *ChatSession, format string) (string, error) {
	store := session.Ctrl.Store()
	if store.Len() == 0 {
		return "", errors.New("nothing to export yet")
	}

	cfg := session.Config
	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.Dir
	opts.Theme = cfg.Export.Theme
	opts.Render = render.Options{SQLExpanded: session.ShowSQL, ChartFilename: cfg.Chart.Filename}
	opts.ChartWidth = cfg.Chart.ExportWidth
	opts.ChartHeight = cfg.Chart.ExportHeight
	opts.Charts = session.charts

	exporter, err := export.New(format, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(store, exporter, opts)
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(w io.Writer, session *ChatSession) {
	fmt.Fprintln(w, TitleStyle.Render("querychat"))
	fmt.Fprintln(w, chat.WelcomeText)
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("Backend: %s  |  /help for commands, Ctrl+D to quit", session.Client.BaseURL())))
	fmt.Fprintln(w)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render("Commands"))
	for _, line := range [][2]string{
		{"/help", "Show this help"},
		{"/sql", "Toggle showing SQL expanded"},
		{"/export [format]", "Export the conversation (html, markdown, json)"},
		{"/health", "Check the backend"},
		{"/clear", "Start a new conversation"},
		{"/quit", "Leave"},
	} {
		fmt.Fprintln(w, "  "+RenderLabel(line[0], line[1]))
	}
}

func printExitSummary(w io.Writer, session *ChatSession) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderSeparator())
	summary := fmt.Sprintf("%d question(s) in %s", session.Asked, formatDurationShort(time.Since(session.StartTime)))
	if session.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", session.Failed)
	}
	fmt.Fprintln(w, DimStyle.Render(summary))
}
