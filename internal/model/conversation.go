// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrTurnNotFound is returned when Replace gets an unknown ID.
	ErrTurnNotFound = errors.New("turn not found")

	// ErrNotPending is returned when Replace targets a turn that is not a
	// placeholder.
	ErrNotPending = errors.New("turn is not pending")
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered, append-only list of turns shown in the chat.
// It is safe for concurrent use.
type Conversation struct {
	mu        sync.RWMutex
	turns     []*Turn
	index     map[string]int
	seq       int
	version   uint64
	atEnd     bool
	listeners []func(*Turn)
}

// NewConversation creates an empty conversation pinned to the end.
func NewConversation() *Conversation {
	return &Conversation{
		index: make(map[string]int),
		atEnd: true,
	}
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// Append adds t at the end of the list and returns it.
func (c *Conversation) Append(t *Turn) *Turn {
	c.mu.Lock()
	c.index[t.ID] = len(c.turns)
	c.turns = append(c.turns, t)
	c.version++
	c.atEnd = true
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, t)
	return t
}

// Replace swaps the pending placeholder with the given ID for t. The
// replacement takes the placeholder's slot, so replies stay next to their
// questions whatever order they arrive in.
func (c *Conversation) Replace(placeholderID string, t *Turn) error {
	c.mu.Lock()
	i, ok := c.index[placeholderID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTurnNotFound, placeholderID)
	}
	if !c.turns[i].Pending {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotPending, placeholderID)
	}
	delete(c.index, placeholderID)
	c.index[t.ID] = i
	c.turns[i] = t
	c.version++
	c.atEnd = true
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, t)
	return nil
}

// Turns returns a copy of the list.
func (c *Conversation) Turns() []*Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Get looks up a turn by ID.
func (c *Conversation) Get(id string) (*Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.turns[i], true
}

// IndexOf returns the position of a turn, or -1.
func (c *Conversation) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// NextSeq hands out the next submit sequence number, starting at 1.
func (c *Conversation) NextSeq() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// PendingCount returns how many placeholders are still waiting.
func (c *Conversation) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, t := range c.turns {
		if t.Pending {
			n++
		}
	}
	return n
}

// Version increases on every append and replace.
func (c *Conversation) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// OnChange registers fn to be called after every append or replace with the
// turn that was added. Listeners run on the caller's goroutine outside the
// lock.
func (c *Conversation) OnChange(fn func(*Turn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func notify(listeners []func(*Turn), t *Turn) {
	for _, fn := range listeners {
		fn(t)
	}
}

// =============================================================================
// SCROLL POSITION
// =============================================================================

// AtEnd reports whether the view should follow the newest turn.
func (c *Conversation) AtEnd() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.atEnd
}

// PinToEnd makes the view follow the newest turn.
func (c *Conversation) PinToEnd() {
	c.mu.Lock()
	c.atEnd = true
	c.mu.Unlock()
}

// Unpin stops following the newest turn until the next change.
func (c *Conversation) Unpin() {
	c.mu.Lock()
	c.atEnd = false
	c.mu.Unlock()
}
