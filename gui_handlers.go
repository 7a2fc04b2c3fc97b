// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spezifisch/stvp/mpvplayer"
	"github.com/spezifisch/stvp/playback"
	"github.com/spezifisch/stvp/remote"
)

var errEmptyPlaylist = errors.New("no videos to play")

func (ui *Ui) handlePageInput(event *tcell.EventKey) *tcell.EventKey {
	// the help modal handles its own keys
	if ui.helpWidget.visible {
		return event
	}

	command, ok := ui.keys[keyName(event)]
	if !ok || !ui.runCommand(command) {
		return event
	}
	return nil
}

// runCommand returns false if the key belongs to the focused widget instead.
func (ui *Ui) runCommand(command string) bool {
	switch command {
	case cmdShowPlayer:
		ui.ShowPage(PagePlayer)

	case cmdShowVideos:
		ui.ShowPage(PageVideos)

	case cmdShowLog:
		ui.ShowPage(PageLog)

	case cmdShowHelp:
		ui.ShowHelp()

	case cmdQuit:
		ui.Quit()

	case cmdPlayToggle:
		// toggle playing/pause, restarts an ended video
		ui.handleControlAction(playback.PlayToggle)

	case cmdFastForward:
		ui.handleControlAction(playback.FastForward)

	case cmdRewind:
		ui.handleControlAction(playback.Rewind)

	case cmdToggleOverlay:
		// other pages use enter for their lists
		if ui.menuWidget.GetActivePage() != PagePlayer {
			return false
		}
		ui.controller.ToggleOverlayVisibility()

	case cmdVolumeDown:
		if err := ui.player.AdjustVolume(-5); err != nil {
			ui.logger.PrintError("runCommand: AdjustVolume-", err)
		}

	case cmdVolumeUp:
		if err := ui.player.AdjustVolume(5); err != nil {
			ui.logger.PrintError("runCommand: AdjustVolume+", err)
		}

	case cmdNextVideo:
		if err := ui.NextVideo(); err != nil {
			ui.logger.PrintError("runCommand: Next", err)
		}

	case cmdPreviousVideo:
		if err := ui.PreviousVideo(); err != nil {
			ui.logger.PrintError("runCommand: Previous", err)
		}

	default:
		return false
	}

	return true
}

// rejected actions are already logged by the controller
func (ui *Ui) handleControlAction(action playback.ControlAction) {
	_ = ui.HandleControlAction(action)
}

func (ui *Ui) ShowPage(name string) {
	ui.pages.SwitchToPage(name)
	ui.menuWidget.SetActivePage(name)
	_, prim := ui.pages.GetFrontPage()
	ui.app.SetFocus(prim)
}

func (ui *Ui) Quit() {
	ui.titles.Close()
	ui.player.Quit()
	ui.app.Stop()
}

// startVideo starts a new viewing session for the playlist entry at index,
// wrapping around at both ends.
func (ui *Ui) startVideo(index int) error {
	ui.mu.Lock()
	if len(ui.videos) == 0 {
		ui.mu.Unlock()
		return errEmptyPlaylist
	}
	index = ((index % len(ui.videos)) + len(ui.videos)) % len(ui.videos)
	ui.videoIndex = index
	item := mpvplayer.VideoItem{
		SessionId: uuid.NewString(),
		Uri:       ui.videos[index],
	}
	ui.current = item
	ui.mu.Unlock()

	ui.logger.Printf("session %s: %s", item.SessionId, item.Uri)
	ui.controller.Reset()

	// a miss queues the lookup, setTitle is called when it completes
	if title, ok := ui.titles.Lookup(item.Uri); ok {
		ui.setTitle(item.Uri, title)
	} else {
		ui.notifyVideoChange(item)
	}

	ui.app.QueueUpdateDraw(ui.videosPage.UpdateVideos)
	ui.eventLoop.loadRequests <- item
	return nil
}

// titleFetched is called by the title cache when a lookup completes.
func (ui *Ui) titleFetched(source string, title string) {
	ui.setTitle(source, title)
	ui.app.QueueUpdateDraw(ui.videosPage.UpdateVideos)
}

// setTitle applies a looked-up title if source is still the current video.
func (ui *Ui) setTitle(source string, title string) {
	ui.mu.Lock()
	if ui.current.Uri != source {
		ui.mu.Unlock()
		return
	}
	ui.current.Title = title
	item := ui.current
	ui.mu.Unlock()

	ui.controller.SetTitle(title)
	ui.notifyVideoChange(item)
}

// updateDuration records the media duration of the current session once mpv
// knows it, so remotes can publish the track length.
func (ui *Ui) updateDuration(status mpvplayer.StatusData) {
	if status.Duration <= 0 || status.SessionId == "" {
		return
	}

	ui.mu.Lock()
	if ui.current.SessionId != status.SessionId || ui.current.Duration == status.Duration {
		ui.mu.Unlock()
		return
	}
	ui.current.Duration = status.Duration
	item := ui.current
	ui.mu.Unlock()

	ui.notifyVideoChange(item)
}

func (ui *Ui) notifyVideoChange(item mpvplayer.VideoItem) {
	ui.mu.Lock()
	callbacks := append([]func(remote.TrackInterface){}, ui.videoCallbacks...)
	ui.mu.Unlock()

	for _, cb := range callbacks {
		cb(&item)
	}
}

// isCurrentSession reports whether item belongs to the running session
func (ui *Ui) isCurrentSession(item mpvplayer.VideoItem) bool {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.current.SessionId == item.SessionId
}

// ControlledPlayer, used by the MPRIS remote

func (ui *Ui) HandleControlAction(action playback.ControlAction) error {
	return ui.controller.HandleControlAction(action)
}

func (ui *Ui) PlaybackState() playback.State {
	return ui.controller.State()
}

func (ui *Ui) OnStateChange(cb func(playback.State)) {
	ui.controller.Subscribe(cb)
}

func (ui *Ui) OnVideoChange(cb func(track remote.TrackInterface)) {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	ui.videoCallbacks = append(ui.videoCallbacks, cb)
}

func (ui *Ui) NextVideo() error {
	ui.mu.Lock()
	next := ui.videoIndex + 1
	ui.mu.Unlock()
	return ui.startVideo(next)
}

func (ui *Ui) PreviousVideo() error {
	ui.mu.Lock()
	previous := ui.videoIndex - 1
	ui.mu.Unlock()
	return ui.startVideo(previous)
}

func (ui *Ui) SetVolume(percentValue int64) error {
	return ui.player.SetVolume(percentValue)
}
