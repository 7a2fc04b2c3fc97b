// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

type UiEventType int

const (
	// media stopped or failed to load, data: nil
	EventStopped UiEventType = iota
	// playback started or resumed, data: VideoItem
	EventPlaying
	// playback paused, data: StatusData
	EventPaused
	// end of media reached (mpv keeps the last frame), data: nil
	EventEnded
	// UI status update, data: StatusData
	EventStatus
)

func (t UiEventType) String() string {
	switch t {
	case EventStopped:
		return "stopped"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	case EventStatus:
		return "status"
	default:
		return "unknown"
	}
}

type UiEvent struct {
	Type UiEventType
	Data interface{}
}

type EventConsumer interface {
	// create event that goes from mpv backend (this package) to a UI frontend
	SendEvent(event UiEvent)
}
