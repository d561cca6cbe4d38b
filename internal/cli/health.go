// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// health.go - Backend connectivity check.
//
// Command: health
// Aliases: status, s
//
// Exits 1 when the backend does not answer /health with a 2xx status, so
// it can gate scripts:
//
//	querychat health && querychat ask "Revenue this week"
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/ui/components"
)

// HandleHealth handles the "health" command.
func HandleHealth(args Args) error {
	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	SetupLogging(args, cfg)
	return runHealth(context.Background(), os.Stdout, args, newClient(cfg))
}

func runHealth(ctx context.Context, w io.Writer, args Args, hc backend.HealthChecker) error {
	res := backend.Probe(ctx, hc)

	if args.JSON {
		data := HealthData{
			URL:       res.URL,
			State:     res.State.String(),
			LatencyMs: res.Latency.Milliseconds(),
		}
		if res.Err != nil {
			data.Error = res.Err.Error()
		}
		resp := NewJSONResponse("health", data)
		resp.Success = res.OK()
		resp.Fprint(w)
	} else {
		printProbe(w, res)
	}

	if !res.OK() {
		return &reportedError{fmt.Errorf("backend %s is unreachable: %w", res.URL, res.Err)}
	}
	return nil
}

// printProbe prints a probe result as labelled lines.
func printProbe(w io.Writer, res backend.ProbeResult) {
	status := SuccessStyle.Render(components.HealthIndicator(res.State))
	if !res.OK() {
		status = ErrorStyle.Render(components.HealthIndicator(res.State))
	}
	fmt.Fprintln(w, RenderLabel("Backend", res.URL))
	fmt.Fprintln(w, LabelStyle.Render("Status:")+" "+status)
	fmt.Fprintln(w, RenderLabel("Latency", formatDurationShort(res.Latency)))
	if res.Err != nil {
		fmt.Fprintln(w, RenderLabel("Error", res.Err.Error()))
	}
}
