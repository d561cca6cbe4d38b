// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and the small command handlers for querychat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHealth
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name used on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdHealth:
		return "health"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose    bool
	JSON       bool
	URL        string // --url overrides backend.url
	ConfigPath string // --config selects the config file

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	ShowSQL    bool // ask: expand the SQL panel
	SaveChart  bool // ask: write the chart PNG
	Force      bool // config init: overwrite

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `querychat - terminal client for the sales data chatbot

Ask questions about your sales data in plain language. Answers come back
with the SQL that produced them, a result table and a chart.

Usage:
  querychat                      Start the chat view (default)
  querychat tui                  Start the chat view
  querychat ask "question"       Ask a single question
  querychat chat                 Line-mode chat with history
  querychat health               Check the backend connection
  querychat config [subcommand]  Configuration
  querychat version              Show version information
  querychat help                 Show this help

Ask Flags:
  --json                         Print the reply as JSON
  --sql                          Show the generated SQL
  --save-chart                   Save the chart as PNG in export.dir

Config Commands:
  querychat config show          Print the effective configuration
  querychat config path          Print the config file location
  querychat config init          Write a default config file
    --force                      Overwrite an existing file
  querychat config get KEY       Print one value (e.g. backend.url)
  querychat config set KEY VAL   Change one value and save

Global Flags:
  --url URL                      Backend base URL (overrides config)
  --config FILE                  Config file (TOML or JSON)
  -v, --verbose                  Log to stderr
  --json                         Machine-readable output

Examples:
  querychat --url http://localhost:8000
  querychat ask "What were total sales by month?" --sql
  querychat ask --json "Top 5 customers by revenue"
  querychat config set backend.url http://sales-bot:8000

Environment:
  QUERYCHAT_BACKEND_URL          Backend base URL
  QUERYCHAT_TIMEOUT              Request timeout in seconds
  QUERYCHAT_THEME                auto, dark or light
  QUERYCHAT_LOG                  Log file for the chat view
  NO_COLOR                       Disable colored output
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("querychat %s\n", Version)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Printf("  Built:   %s\n", BuildDate)
	fmt.Printf("  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat", "repl":
		return CmdChat, parsedArgs

	case "health", "status", "s":
		return CmdHealth, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// A bare question is an ask.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.URL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--url="):
				parsedArgs.URL = strings.TrimPrefix(arg, "--url=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case arg == "-v" && len(remaining) > 0:
				// -v after a command is --verbose; first it means version.
				parsedArgs.Verbose = true
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "sql", "save-chart", "json")
	args.ShowSQL = p.BoolFlag("sql")
	args.SaveChart = p.BoolFlag("save-chart")
	if p.BoolFlag("json") {
		args.JSON = true
	}
	args.Query = JoinPositionalArgs(p, 0)
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "force")
	args.Subcommand = p.Subcommand()
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = JoinPositionalArgs(p, 2)
	args.Force = p.BoolFlag("force")
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
