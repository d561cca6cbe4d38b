// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Command: ask [question]
//
// Examples:
//
//	querychat ask "What were total sales by month?"
//	querychat ask --sql "Top 5 customers by revenue"
//	querychat ask --json "Revenue by region" > reply.json
//	querychat ask --save-chart "Monthly orders"
//
// Flags:
//
//	--sql          Show the generated SQL expanded
//	--save-chart   Write the chart PNG to export.dir
//	--json         Print the reply as JSON
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/chart"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/controller"
	"github.com/jeranaias/querychat/internal/model"
	"github.com/jeranaias/querychat/internal/render"
	"github.com/jeranaias/querychat/internal/ui/components"
	"github.com/jeranaias/querychat/internal/ui/styles"
)

const askExample = `querychat ask "What were total sales by month?"`

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("question", askExample)
	}

	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	SetupLogging(args, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return runAsk(ctx, os.Stdout, args, cfg, newClient(cfg), GetTerminalWidth())
}

// runAsk submits one question and prints the reply to w.
func runAsk(ctx context.Context, w io.Writer, args Args, cfg *config.Config, client *backend.Client, width int) error {
	ctrl := controller.New(controller.Config{BackendURL: client.BaseURL()}, nil, client)

	start := time.Now()
	turn, ok := ctrl.Submit(ctx, args.Query)
	if !ok {
		return ErrMissingArgument("question", askExample)
	}
	elapsed := time.Since(start)

	c := buildChart(turn, cfg)
	var chartPath string
	if args.SaveChart {
		if c == nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("[WARN]")+" The answer has no chart to save")
		} else {
			path, err := c.SaveTo(cfg.Export.Dir, cfg.Chart.Filename)
			if err != nil {
				return NewCommandError("ask", "save-chart", "could not write the chart", err)
			}
			chartPath = path
		}
	}

	if args.JSON {
		if turn.Err != nil {
			err := errors.New(turn.Err.Text)
			NewJSONErrorResponse("ask", err).Fprint(w)
			return &reportedError{err}
		}
		return NewJSONResponse("ask", AskData{
			Question:   turn.Question,
			BackendURL: ctrl.BackendURL(),
			DurationMs: elapsed.Milliseconds(),
			Reply:      turn.Payload,
			ChartPath:  chartPath,
		}).Fprint(w)
	}

	fmt.Fprintln(w, mountAnswer(turn, cfg, c, width, args.ShowSQL))
	if chartPath != "" {
		fmt.Fprintf(w, "%s Chart saved to %s\n", SuccessStyle.Render("[OK]"), chartPath)
	}
	if turn.Err != nil {
		return &reportedError{errors.New(turn.Err.Text)}
	}
	return nil
}

// buildChart returns the chart of a bot turn, or nil. A spec that cannot be
// charted is left for Mount to report inline.
func buildChart(turn *model.Turn, cfg *config.Config) *chart.Chart {
	if turn.Err != nil || !turn.Payload.HasChart() {
		return nil
	}
	c, err := chart.New(turn.Payload.ChartData)
	if err != nil {
		log.Printf("WARNING: CHART_BUILD_FAILED | turn=%s err=%v", turn.ID, err)
		return nil
	}
	c.SetExportSize(cfg.Chart.ExportWidth, cfg.Chart.ExportHeight)
	return c
}

// mountAnswer lays out a turn the way the chat view shows it.
func mountAnswer(turn *model.Turn, cfg *config.Config, c *chart.Chart, width int, showSQL bool) string {
	tree := render.Turn(turn, render.Options{
		SQLExpanded:   showSQL || cfg.UI.SQLExpanded,
		ChartFilename: cfg.Chart.Filename,
	})
	return components.Mount(tree, components.MountOptions{
		Width:       width,
		Theme:       styles.NewThemeNamed(cfg.UI.Theme),
		Chart:       c,
		ChartHeight: cfg.Chart.Height,
	})
}
