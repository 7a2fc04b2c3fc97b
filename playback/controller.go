// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package playback

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/spezifisch/stvp/logger"
)

// ErrCommandRejected matches every *CommandRejectedError.
var ErrCommandRejected = errors.New("command rejected by player")

// CommandRejectedError carries the sink's error for a rejected command.
// It matches ErrCommandRejected and unwraps to the sink's error.
type CommandRejectedError struct {
	Action  ControlAction
	Command Command
	Err     error
}

func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", ErrCommandRejected, e.Action, e.Command, e.Err)
}

func (e *CommandRejectedError) Unwrap() error {
	return e.Err
}

func (e *CommandRejectedError) Is(target error) bool {
	return target == ErrCommandRejected
}

// CommandSink is the media player side of the controller. Execute must not
// wait for the command to take effect; the result arrives as telemetry.
type CommandSink interface {
	Execute(cmd Command) error
}

// Controller owns the State of one viewing session. Handlers may be called
// from several goroutines; each call is applied to completion in the order
// the calls acquire the controller.
type Controller struct {
	mu    sync.Mutex
	state State
	opts  Options
	sink  CommandSink

	subscribers map[int]func(State)
	nextSubID   int

	// seq numbers every state change; notifyMu orders delivery so that a
	// subscriber never sees an older state after a newer one
	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64

	logger logger.LoggerInterface
}

func NewController(sink CommandSink, opts Options, logger logger.LoggerInterface) *Controller {
	return &Controller{
		opts:        opts,
		sink:        sink,
		subscribers: make(map[int]func(State)),
		logger:      logger,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Options() Options {
	return c.opts
}

// HandleControlAction sends the commands for action to the sink.
//
// If the sink rejects a command, the remaining commands are dropped, the
// state is rolled back and a *CommandRejectedError is returned.
func (c *Controller) HandleControlAction(action ControlAction) error {
	c.mu.Lock()
	previous := c.state
	commands, next := HandleControlAction(action, c.state, c.opts)
	c.state = next
	c.seq++
	seq := c.seq

	for _, cmd := range commands {
		if c.sink == nil {
			break
		}
		if err := c.sink.Execute(cmd); err != nil {
			c.state = previous
			c.mu.Unlock()

			c.logger.Printf("playback: %s rejected %s: %s", action, cmd, err)
			return &CommandRejectedError{Action: action, Command: cmd, Err: err}
		}
	}
	c.mu.Unlock()

	c.notify(next, seq)
	return nil
}

func (c *Controller) HandleTelemetryEvent(event TelemetryEvent) {
	c.update(func(s State) State {
		return HandleTelemetryEvent(event, s)
	})
}

func (c *Controller) ToggleOverlayVisibility() {
	c.update(ToggleOverlayVisibility)
}

func (c *Controller) SetTitle(title string) {
	c.update(func(s State) State {
		s.Title = title
		return s
	})
}

// Reset starts a new session with a zeroed state.
func (c *Controller) Reset() {
	c.update(func(State) State {
		return State{}
	})
}

// Subscribe registers fn to be called with the new state after every change.
// fn runs on the goroutine that caused the change, so it must not block or
// call back into the Controller. States arrive in the order they were
// produced; a state that was overtaken by a newer one is skipped.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Controller) update(fn func(State) State) {
	c.mu.Lock()
	c.state = fn(c.state)
	c.seq++
	state, seq := c.state, c.seq
	c.mu.Unlock()

	c.notify(state, seq)
}

func (c *Controller) notify(state State, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq

	c.mu.Lock()
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
