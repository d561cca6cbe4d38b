// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the text-to-SQL chat service.
//
// Two endpoints are used:
//
//	POST {url}/chat    {"question": "..."} -> answer, sql, columns, rows, chart_data
//	GET  {url}/health  2xx when the service is up
//
// Failures are reported as:
//
//   - *StatusError for a non-2xx status; the message is "HTTP <code>"
//   - ErrRequest for network failures
//   - ErrDecode for bodies that are not a valid payload
//   - ErrResponseTooLarge when the body exceeds the size limit
//
// Requests are never retried. Probe runs a single health check and logs the
// outcome.
package backend
