// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/querychat/internal/model"
)

const (
	// DefaultURL is the backend address used when nothing is configured.
	DefaultURL = "http://127.0.0.1:8000"

	// DefaultHealthTimeout bounds a single health probe.
	DefaultHealthTimeout = 5 * time.Second

	// DefaultMaxResponseSize is the largest body read from the backend.
	DefaultMaxResponseSize = 10 * 1024 * 1024

	// maxErrorBody is how much of a failed response is kept on StatusError.
	maxErrorBody = 512
)

var (
	// ErrRequest indicates the request could not be sent or completed.
	ErrRequest = errors.New("request failed")

	// ErrDecode indicates the response body was not a valid payload.
	ErrDecode = errors.New("invalid response")

	// ErrResponseTooLarge indicates the body exceeded the size limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// sharedTransport pools connections across every client in the process.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Config configures a Client.
type Config struct {
	// URL is the backend base address, e.g. http://127.0.0.1:8000.
	URL string

	// Timeout bounds a whole /chat exchange. Zero means no timeout.
	Timeout time.Duration

	// HealthTimeout bounds a health probe.
	HealthTimeout time.Duration

	// MaxResponseSize caps the body size in bytes.
	MaxResponseSize int64

	// RatePerSec spaces out requests. Zero disables the limiter.
	RatePerSec float64
}

type chatRequest struct {
	Question string `json:"question"`
}

// Client is safe for concurrent use.
type Client struct {
	mu              sync.RWMutex
	baseURL         string
	httpClient      *http.Client
	limiter         *rate.Limiter
	maxResponseSize int64
	healthTimeout   time.Duration
	ratePerSec      float64
}

// New creates a client from cfg, filling in defaults for zero values.
func New(cfg Config) *Client {
	c := &Client{httpClient: &http.Client{Transport: sharedTransport}}
	c.apply(cfg)
	return c
}

// Reconfigure swaps every setting of cfg into the client. Requests already
// in flight finish with the settings they started with.
func (c *Client) Reconfigure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(cfg)
}

// apply must be called with mu held or before the client is shared.
func (c *Client) apply(cfg Config) {
	c.baseURL = normalizeURL(cfg.URL)
	if c.baseURL == "" {
		c.baseURL = DefaultURL
	}

	hc := *c.httpClient
	hc.Timeout = cfg.Timeout
	c.httpClient = &hc

	c.maxResponseSize = cfg.MaxResponseSize
	if c.maxResponseSize <= 0 {
		c.maxResponseSize = DefaultMaxResponseSize
	}
	c.healthTimeout = cfg.HealthTimeout
	if c.healthTimeout <= 0 {
		c.healthTimeout = DefaultHealthTimeout
	}

	if cfg.RatePerSec != c.ratePerSec {
		c.ratePerSec = cfg.RatePerSec
		c.limiter = nil
		if cfg.RatePerSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
		}
	}
}

// Settings returns the client's effective configuration.
func (c *Client) Settings() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{
		URL:             c.baseURL,
		Timeout:         c.httpClient.Timeout,
		HealthTimeout:   c.healthTimeout,
		MaxResponseSize: c.maxResponseSize,
		RatePerSec:      c.ratePerSec,
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.mu.Lock()
	c.httpClient = h
	c.mu.Unlock()
	return c
}

// WithBaseURL sets the backend address.
func (c *Client) WithBaseURL(url string) *Client {
	c.SetBaseURL(url)
	return c
}

// SetBaseURL swaps the backend address. Requests already in flight keep
// the old one.
func (c *Client) SetBaseURL(url string) {
	c.mu.Lock()
	c.baseURL = normalizeURL(url)
	c.mu.Unlock()
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func normalizeURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Chat sends one question and decodes the reply.
func (c *Client) Chat(ctx context.Context, question string) (*model.Payload, error) {
	body, err := json.Marshal(chatRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, readErr := c.readResponse(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(data, maxErrorBody)}
	}
	if readErr != nil {
		return nil, readErr
	}

	p, err := model.ParsePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return p, nil
}

// Health calls GET /health. Any 2xx status counts as healthy.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Settings().HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}

// do sends req once, waiting on the rate limiter first. Only the method,
// path, status and duration are logged.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	hc, limiter := c.httpClient, c.limiter
	c.mu.RUnlock()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequest, err)
		}
	}

	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		log.Printf("API Error: %s %s (%v): %v", req.Method, req.URL.Path, time.Since(start), err)
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, req.URL.Path, time.Since(start))
	return resp, nil
}

// readResponse reads at most maxResponseSize bytes and fails when the body
// is larger.
func (c *Client) readResponse(r io.Reader) ([]byte, error) {
	limit := c.Settings().MaxResponseSize
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRequest, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: exceeded %d bytes", ErrResponseTooLarge, limit)
	}
	return body, nil
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	return string(data)
}
