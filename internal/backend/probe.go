// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"log"
	"time"
)

// HealthState is the outcome of the last probe.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthOK
	HealthDown
)

// String returns a short label for status bars.
func (s HealthState) String() string {
	switch s {
	case HealthOK:
		return "online"
	case HealthDown:
		return "offline"
	default:
		return "checking"
	}
}

// HealthChecker is what Probe needs from a client.
type HealthChecker interface {
	Health(ctx context.Context) error
	BaseURL() string
}

// ProbeResult describes one health check.
type ProbeResult struct {
	State     HealthState
	URL       string
	Err       error
	Latency   time.Duration
	CheckedAt time.Time
}

// OK reports whether the backend answered with a 2xx status.
func (r ProbeResult) OK() bool { return r.State == HealthOK }

// Probe runs a single health check and logs the result. It never retries
// and never affects chat requests.
func Probe(ctx context.Context, hc HealthChecker) ProbeResult {
	start := time.Now()
	err := hc.Health(ctx)
	res := ProbeResult{
		URL:       hc.BaseURL(),
		Err:       err,
		Latency:   time.Since(start),
		CheckedAt: time.Now(),
	}
	if err != nil {
		res.State = HealthDown
		log.Printf("WARNING: BACKEND_HEALTH | status=unreachable url=%s err=%v", res.URL, err)
		return res
	}
	res.State = HealthOK
	log.Printf("BACKEND_HEALTH | status=ok url=%s latency=%v", res.URL, res.Latency)
	return res
}
