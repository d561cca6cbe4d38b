// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart turns a backend chart description into an interactive chart.
//
// A Chart owns its own view state: which datasets are visible, the label
// window and the vertical zoom. It never modifies the ChartSpec it was built
// from. Dataset 0 is bound to the left axis and dataset 1 to the right axis;
// gridlines come from the left axis only.
//
// Rendering is deferred until Attach reports the size of the container the
// chart was mounted into. Failures while drawing are recovered and logged as
// CHART_RENDER_FAILED, leaving an empty container and an error from Err.
//
// PNG export goes through go-chart and always reflects the current view.
//
// A Chart is not safe for concurrent use. Callers that export off the UI
// goroutine work on a Clone.
package chart
