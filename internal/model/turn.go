// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who a turn belongs to.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Assistant"
	default:
		return string(r)
	}
}

// TurnError is the failure carried by a bot error turn.
type TurnError struct {
	Text       string `json:"text"`
	BackendURL string `json:"backend_url"`
}

// Turn is one entry in the message list.
//
// Exactly one of Question (user), Payload (bot reply), Err (bot failure) or
// Pending (loading placeholder) describes the content.
type Turn struct {
	ID        string     `json:"id"`
	Seq       int        `json:"seq"`
	Role      Role       `json:"role"`
	Timestamp time.Time  `json:"timestamp"`
	Question  string     `json:"question,omitempty"`
	Payload   *Payload   `json:"payload,omitempty"`
	Err       *TurnError `json:"error,omitempty"`
	Pending   bool       `json:"pending,omitempty"`
}

func newTurn(role Role, seq int) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Seq:       seq,
		Role:      role,
		Timestamp: time.Now(),
	}
}

// NewUserTurn creates the turn holding a submitted question.
func NewUserTurn(question string, seq int) *Turn {
	t := newTurn(RoleUser, seq)
	t.Question = question
	return t
}

// NewPendingTurn creates the loading placeholder shown while a request is
// in flight.
func NewPendingTurn(seq int) *Turn {
	t := newTurn(RoleBot, seq)
	t.Pending = true
	return t
}

// NewBotTurn creates a successful reply.
func NewBotTurn(seq int, p *Payload) *Turn {
	t := newTurn(RoleBot, seq)
	t.Payload = p
	return t
}

// NewErrorTurn creates a failed reply.
func NewErrorTurn(seq int, text, backendURL string) *Turn {
	t := newTurn(RoleBot, seq)
	t.Err = &TurnError{Text: text, BackendURL: backendURL}
	return t
}

// IsUser reports whether the turn is a question.
func (t *Turn) IsUser() bool { return t.Role == RoleUser }

// IsError reports whether the turn is a failed reply.
func (t *Turn) IsError() bool { return t.Err != nil }

// Clone returns a shallow copy. The payload is shared; it is never mutated
// after decoding.
func (t *Turn) Clone() *Turn {
	if t == nil {
		return nil
	}
	c := *t
	if t.Err != nil {
		e := *t.Err
		c.Err = &e
	}
	return &c
}
