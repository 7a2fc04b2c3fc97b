// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"time"

	"github.com/spezifisch/stvp/playback"
)

// ControlledPlayer is what a remote control can drive.
type ControlledPlayer interface {
	HandleControlAction(action playback.ControlAction) error
	PlaybackState() playback.State

	// Registers a callback which is invoked after every playback state change.
	OnStateChange(cb func(playback.State))

	// Registers a callback which is invoked when another video is loaded.
	OnVideoChange(cb func(track TrackInterface))

	NextVideo() error
	PreviousVideo() error

	SetVolume(percentValue int64) error
}

type TrackInterface interface {
	GetId() string
	GetTitle() string
	GetDuration() time.Duration

	// something like Uri != ""
	IsValid() bool
}
