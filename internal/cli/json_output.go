// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.
//
// Every command that takes --json prints the same envelope, so callers can
// check "success" before looking at "data".
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/querychat/internal/model"
)

// JSONResponse is the response envelope for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is when the response was generated (RFC 3339, UTC)
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	return r.Fprint(os.Stdout)
}

// Fprint outputs the indented JSON response to w.
func (r *JSONResponse) Fprint(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// RESPONSE DATA TYPES
// =============================================================================

// VersionData is the data of "querychat version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the data of "querychat ask --json".
type AskData struct {
	Question   string         `json:"question"`
	BackendURL string         `json:"backend_url"`
	DurationMs int64          `json:"duration_ms"`
	Reply      *model.Payload `json:"reply,omitempty"`
	ChartPath  string         `json:"chart_path,omitempty"`
}

// HealthData is the data of "querychat health --json".
type HealthData struct {
	URL       string `json:"url"`
	State     string `json:"state"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// ConfigPathData is the data of "querychat config path --json".
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}
