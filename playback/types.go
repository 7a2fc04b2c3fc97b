// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package playback

import (
	"fmt"
	"time"
)

// ControlAction is a user intent coming from the UI or a remote control.
type ControlAction int

const (
	PlayToggle ControlAction = iota
	FastForward
	Rewind
)

func (a ControlAction) String() string {
	switch a {
	case PlayToggle:
		return "PlayToggle"
	case FastForward:
		return "FastForward"
	case Rewind:
		return "Rewind"
	default:
		return "Unknown"
	}
}

type CommandType int

const (
	CommandPlay CommandType = iota
	CommandPause
	CommandSeekTo
)

// Command is sent to the media player. Position is only meaningful for
// CommandSeekTo and is an absolute offset from the start of the media.
type Command struct {
	Type     CommandType
	Position time.Duration
}

func Play() Command  { return Command{Type: CommandPlay} }
func Pause() Command { return Command{Type: CommandPause} }

func SeekTo(position time.Duration) Command {
	return Command{Type: CommandSeekTo, Position: position}
}

func (c Command) String() string {
	switch c.Type {
	case CommandPlay:
		return "Play"
	case CommandPause:
		return "Pause"
	case CommandSeekTo:
		return fmt.Sprintf("SeekTo(%v)", c.Position)
	default:
		return "Unknown"
	}
}

type TelemetryKind int

const (
	TelemetryIdle TelemetryKind = iota
	TelemetryPlaying
	TelemetryPaused
	TelemetryEnded
	// periodic status report, see Progress
	TelemetryProgress
)

// TelemetryEvent is a playback state change reported by the media player.
type TelemetryEvent struct {
	Kind TelemetryKind

	// set for TelemetryPaused
	PlayProgress   float64
	BufferProgress float64

	// set for TelemetryProgress; Buffered is the absolute position up to
	// which media is buffered
	Position time.Duration
	Duration time.Duration
	Buffered time.Duration
}

func Idle() TelemetryEvent    { return TelemetryEvent{Kind: TelemetryIdle} }
func Playing() TelemetryEvent { return TelemetryEvent{Kind: TelemetryPlaying} }
func Ended() TelemetryEvent   { return TelemetryEvent{Kind: TelemetryEnded} }

func Paused(playProgress, bufferProgress float64) TelemetryEvent {
	return TelemetryEvent{
		Kind:           TelemetryPaused,
		PlayProgress:   playProgress,
		BufferProgress: bufferProgress,
	}
}

func Progress(position, duration, buffered time.Duration) TelemetryEvent {
	return TelemetryEvent{
		Kind:     TelemetryProgress,
		Position: position,
		Duration: duration,
		Buffered: buffered,
	}
}

// State is everything the UI needs to render one viewing session.
type State struct {
	Title string

	IsPlaying bool

	// fractions of Duration in [0,1]
	PlayProgress   float64
	BufferProgress float64

	CurrentPosition time.Duration
	Duration        time.Duration

	ControlOverlayVisible bool
}

// Ended reports whether the media was played to the end and is not playing.
func (s State) Ended() bool {
	return !s.IsPlaying && s.PlayProgress >= 1
}

type Options struct {
	SkipForward  time.Duration
	SkipBackward time.Duration
}

func DefaultOptions() Options {
	return Options{
		SkipForward:  5 * time.Second,
		SkipBackward: 5 * time.Second,
	}
}
