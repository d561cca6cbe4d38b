// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/querychat/internal/model"
)

// ErrEmptyResponse is reported when the backend returns neither a payload
// nor an error.
var ErrEmptyResponse = errors.New("empty response")

// Asker sends one question to the backend.
type Asker interface {
	Chat(ctx context.Context, question string) (*model.Payload, error)
}

// Config holds the controller settings that can change at runtime.
type Config struct {
	// BackendURL is quoted in error turns.
	BackendURL string

	// BlockWhilePending refuses new questions while one is outstanding.
	BlockWhilePending bool
}

// Pending identifies a submitted question whose reply has not arrived.
type Pending struct {
	Seq           int
	Question      string
	UserID        string
	PlaceholderID string
	Started       time.Time
}

// Outcome is the result of one backend call.
type Outcome struct {
	Payload  *model.Payload
	Err      error
	Duration time.Duration
}

// Controller is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	store    *model.Conversation
	asker    Asker
	inflight int
}

// New creates a controller over store. Every dependency is injected.
func New(cfg Config, store *model.Conversation, asker Asker) *Controller {
	if store == nil {
		store = model.NewConversation()
	}
	return &Controller{cfg: cfg, store: store, asker: asker}
}

// Store returns the conversation the controller appends to.
func (c *Controller) Store() *model.Conversation { return c.store }

// SetBackendURL changes the URL quoted in later error turns.
func (c *Controller) SetBackendURL(url string) {
	c.mu.Lock()
	c.cfg.BackendURL = url
	c.mu.Unlock()
}

// BackendURL returns the URL quoted in error turns.
func (c *Controller) BackendURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.BackendURL
}

// SetBlockWhilePending toggles single-request mode.
func (c *Controller) SetBlockWhilePending(block bool) {
	c.mu.Lock()
	c.cfg.BlockWhilePending = block
	c.mu.Unlock()
}

// InFlight returns the number of requests awaiting Complete.
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Busy reports whether Begin would currently refuse a question.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.BlockWhilePending && c.inflight > 0
}

// Begin validates raw and, when it is not blank, appends the question and
// its placeholder. It reports false without side effects for blank input
// or while blocked.
func (c *Controller) Begin(raw string) (*Pending, bool) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return nil, false
	}

	c.mu.Lock()
	if c.cfg.BlockWhilePending && c.inflight > 0 {
		c.mu.Unlock()
		return nil, false
	}
	c.inflight++
	c.mu.Unlock()

	seq := c.store.NextSeq()
	user := c.store.Append(model.NewUserTurn(question, seq))
	placeholder := c.store.Append(model.NewPendingTurn(seq))

	log.Printf("CHAT_SUBMIT | seq=%d chars=%d", seq, len([]rune(question)))
	return &Pending{
		Seq:           seq,
		Question:      question,
		UserID:        user.ID,
		PlaceholderID: placeholder.ID,
		Started:       time.Now(),
	}, true
}

// Await makes exactly one backend call for p and blocks until it returns.
func (c *Controller) Await(ctx context.Context, p *Pending) Outcome {
	start := time.Now()
	payload, err := c.asker.Chat(ctx, p.Question)
	if err == nil && payload == nil {
		err = ErrEmptyResponse
	}
	return Outcome{Payload: payload, Err: err, Duration: time.Since(start)}
}

// Complete swaps p's placeholder for the reply, or for an error turn that
// quotes the failure and the backend URL, and returns the new turn.
func (c *Controller) Complete(p *Pending, out Outcome) *model.Turn {
	var turn *model.Turn
	if out.Err != nil {
		url := c.BackendURL()
		log.Printf("CHAT_ERROR | seq=%d url=%s duration=%v err=%v", p.Seq, url, out.Duration, out.Err)
		turn = model.NewErrorTurn(p.Seq, out.Err.Error(), url)
	} else {
		log.Printf("CHAT_COMPLETE | seq=%d sql=%t rows=%d chart=%t duration=%v",
			p.Seq, out.Payload.HasSQL(), len(out.Payload.Rows), out.Payload.HasChart(), out.Duration)
		turn = model.NewBotTurn(p.Seq, out.Payload)
	}

	if err := c.store.Replace(p.PlaceholderID, turn); err != nil {
		log.Printf("CHAT_REPLACE_FAILED | seq=%d err=%v", p.Seq, err)
		c.store.Append(turn)
	}

	c.mu.Lock()
	if c.inflight > 0 {
		c.inflight--
	}
	c.mu.Unlock()
	return turn
}

// Submit runs Begin, Await and Complete in sequence. It returns nil and
// false for blank input.
func (c *Controller) Submit(ctx context.Context, raw string) (*model.Turn, bool) {
	p, ok := c.Begin(raw)
	if !ok {
		return nil, false
	}
	return c.Complete(p, c.Await(ctx, p)), true
}
