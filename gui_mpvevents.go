// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"time"

	"github.com/spezifisch/stvp/mpvplayer"
	"github.com/spezifisch/stvp/playback"
)

func (ui *Ui) SendEvent(event mpvplayer.UiEvent) {
	ui.mpvEvents <- event
}

// telemetryForEvent translates an mpv wrapper event into controller telemetry.
func telemetryForEvent(event mpvplayer.UiEvent) []playback.TelemetryEvent {
	switch event.Type {
	case mpvplayer.EventStatus:
		status, ok := event.Data.(mpvplayer.StatusData)
		if !ok {
			return nil
		}
		events := []playback.TelemetryEvent{
			playback.Progress(status.Position, status.Duration, status.Buffered),
		}
		// keep-open holds the last frame; any later tick must not undo the end
		if status.Ended {
			events = append(events, playback.Ended())
		}
		return events

	case mpvplayer.EventPaused:
		status, ok := event.Data.(mpvplayer.StatusData)
		if !ok {
			return nil
		}
		return []playback.TelemetryEvent{
			playback.Paused(ratio(status.Position, status.Duration), ratio(status.Buffered, status.Duration)),
		}

	case mpvplayer.EventPlaying:
		return []playback.TelemetryEvent{playback.Playing()}

	case mpvplayer.EventEnded:
		return []playback.TelemetryEvent{playback.Ended()}

	case mpvplayer.EventStopped:
		return []playback.TelemetryEvent{playback.Idle()}
	}
	return nil
}

func ratio(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
