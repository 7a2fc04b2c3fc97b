// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package playback

import "time"

// HandleControlAction resolves a user intent against the current state. It
// returns the commands to send to the player, in order, and the next state.
//
// Seeks update CurrentPosition right away; the player's telemetry corrects
// it later. Fast-forward is not clamped to the duration, the player clamps
// at end of stream. Rewind is clamped at zero.
func HandleControlAction(action ControlAction, state State, opts Options) ([]Command, State) {
	switch action {
	case PlayToggle:
		if state.Ended() {
			// restart from the beginning; PlayProgress resets once the
			// player reports the new position
			state.IsPlaying = true
			state.CurrentPosition = 0
			state.ControlOverlayVisible = false
			return []Command{SeekTo(0), Play()}, state
		}
		if state.IsPlaying {
			// pausing keeps the overlay as it is
			state.IsPlaying = false
			return []Command{Pause()}, state
		}
		state.IsPlaying = true
		state.ControlOverlayVisible = false
		return []Command{Play()}, state

	case FastForward:
		target := state.CurrentPosition + opts.SkipForward
		state.CurrentPosition = target
		return []Command{SeekTo(target)}, state

	case Rewind:
		target := max(0, state.CurrentPosition-opts.SkipBackward)
		state.CurrentPosition = target
		return []Command{SeekTo(target)}, state
	}

	return nil, state
}

// HandleTelemetryEvent folds a player report into the state.
func HandleTelemetryEvent(event TelemetryEvent, state State) State {
	switch event.Kind {
	case TelemetryPaused:
		state.PlayProgress = clampFraction(event.PlayProgress)
		state.BufferProgress = clampFraction(event.BufferProgress)
		state.IsPlaying = false

	case TelemetryPlaying:
		state.IsPlaying = true

	case TelemetryEnded:
		state.PlayProgress = 1
		state.IsPlaying = false

	case TelemetryIdle:
		state.IsPlaying = false
		state.PlayProgress = 0
		state.BufferProgress = 0
		state.CurrentPosition = 0
		state.Duration = 0

	case TelemetryProgress:
		state.CurrentPosition = max(0, event.Position)
		state.Duration = max(0, event.Duration)
		if state.Duration > 0 {
			state.PlayProgress = fraction(state.CurrentPosition, state.Duration)
			state.BufferProgress = fraction(event.Buffered, state.Duration)
		}
	}

	return state
}

// ToggleOverlayVisibility flips the control overlay. It is independent of
// the playback state and never produces a command.
func ToggleOverlayVisibility(state State) State {
	state.ControlOverlayVisible = !state.ControlOverlayVisible
	return state
}

func fraction(part, whole time.Duration) float64 {
	return clampFraction(float64(part) / float64(whole))
}

func clampFraction(f float64) float64 {
	if f != f { // NaN
		return 0
	}
	return min(1, max(0, f))
}
