// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import "time"

// VideoItem is one entry of the playlist given on the command line.
type VideoItem struct {
	// SessionId identifies the viewing session the item was loaded for
	SessionId string
	Uri       string
	Title     string
	Duration  time.Duration
}

func (v *VideoItem) GetTitle() string {
	if v == nil {
		return ""
	}
	return v.Title
}

func (v *VideoItem) GetDuration() time.Duration {
	if v == nil {
		return 0
	}
	return v.Duration
}

func (v *VideoItem) GetId() string {
	if v == nil {
		return ""
	}
	return v.SessionId
}

func (v *VideoItem) IsValid() bool {
	return v != nil && v.Uri != ""
}

// StatusData is a player progress report for the UI
type StatusData struct {
	// SessionId of the loaded item, empty while a replacement is loading
	SessionId string

	Volume int64

	Position time.Duration
	Duration time.Duration
	// absolute position up to which the demuxer cache reaches
	Buffered time.Duration

	Paused bool
	Ended  bool
}
