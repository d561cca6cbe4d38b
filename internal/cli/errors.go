// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for querychat commands.
//
// Handlers always return errors; main decides how to show them and which
// exit code to use.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error, including an
	// unreachable backend
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a config file or settings error
	ExitConfigError = 3
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "config"
	Action  string // e.g. "set"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError reports a missing or malformed argument.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// ErrMissingArgument returns a usage error for a required argument.
func ErrMissingArgument(argName, example string) error {
	return &UsageError{
		Reason:  fmt.Sprintf("missing required argument: %s", argName),
		Example: example,
	}
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	var shown *reportedError
	if err == nil || errors.As(err, &shown) {
		return
	}
	if jsonMode {
		displayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func displayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":   err.Error(),
		"success": false,
	}

	var cmdErr *CommandError
	var usageErr *UsageError
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &usageErr):
		output["error_type"] = "usage_error"
	case errors.As(err, &statusErr):
		output["error_type"] = "backend_status"
		output["status"] = statusErr.Status
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// HandleErrorAndExit displays an error and exits with its exit code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	out := io.Writer(os.Stderr)
	if jsonMode {
		out = os.Stdout
	}
	DisplayError(out, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validationErr config.ValidationError
	var validateErrs config.ValidateErrors
	if errors.As(err, &validationErr) || errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// reportedError is a failure the command already showed; only its exit
// code is left to report.
type reportedError struct {
	error
}

func (e *reportedError) Unwrap() error { return e.error }
