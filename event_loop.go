// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spezifisch/stvp/metadata"
	"github.com/spezifisch/stvp/mpvplayer"
	"github.com/spezifisch/stvp/playback"
)

type eventLoop struct {
	// sniffing and loading are handled by the background loop
	loadRequests chan mpvplayer.VideoItem
}

func (ui *Ui) initEventLoops() {
	ui.eventLoop = &eventLoop{
		loadRequests: make(chan mpvplayer.VideoItem, 16),
	}
}

func (ui *Ui) runEventLoops() {
	go ui.guiEventLoop()
	go ui.backgroundEventLoop()
}

// handle ui updates
func (ui *Ui) guiEventLoop() {
	for {
		select {
		case msg := <-ui.logger.Prints:
			// handle log page output
			ui.logPage.Print(msg)

		case mpvEvent := <-ui.mpvEvents:
			// handle events from mpv wrapper
			switch mpvEvent.Type {
			case mpvplayer.EventStatus:
				if statusData, ok := mpvEvent.Data.(mpvplayer.StatusData); ok {
					ui.updateDuration(statusData)
					ui.app.QueueUpdateDraw(func() {
						ui.playerStatus.SetText(formatPlayerStatus(statusData.Volume, statusData.Position, statusData.Duration))
					})
				}

			case mpvplayer.EventStopped, mpvplayer.EventPlaying, mpvplayer.EventPaused, mpvplayer.EventEnded:
				ui.logger.Printf("mpvEvent: %s", mpvEvent.Type)

			default:
				ui.logger.Printf("guiEventLoop: unhandled mpvEvent %v", mpvEvent)
				continue
			}

			for _, event := range telemetryForEvent(mpvEvent) {
				ui.controller.HandleTelemetryEvent(event)
			}
		}
	}
}

// loop for blocking background tasks that would otherwise block the ui
func (ui *Ui) backgroundEventLoop() {
	for item := range ui.eventLoop.loadRequests {
		// the user skipped ahead while this one was queued
		if !ui.isCurrentSession(item) {
			continue
		}

		if ui.config.Sniff {
			if !ui.sniffSource(item) {
				continue
			}
		}

		// sniffing may take a while
		if !ui.isCurrentSession(item) {
			continue
		}

		if err := ui.player.Load(item, ui.config.Autoplay); err != nil {
			ui.logger.PrintError("backgroundEventLoop: Load", err)
			ui.controller.HandleTelemetryEvent(playback.Idle())
			ui.showMessageBoxf("Unable to load %s", item.Uri)
		}
	}
}

// sniffSource returns false if the source should not be handed to mpv.
func (ui *Ui) sniffSource(item mpvplayer.VideoItem) bool {
	ctx, cancel := context.WithTimeout(context.Background(), ui.config.MetadataTimeout)
	defer cancel()

	mime, err := ui.sniffer.Sniff(ctx, item.Uri)
	switch {
	case errors.Is(err, metadata.ErrNotMedia):
		ui.logger.PrintError("sniff "+item.Uri, err)
		ui.controller.HandleTelemetryEvent(playback.Idle())
		ui.showMessageBoxf("%s is not a video (%s)", item.Uri, mime)
		return false

	case err != nil:
		// let mpv decide
		ui.logger.Printf("sniff %s: %s", item.Uri, err)

	case mime == "":
		ui.logger.Printf("sniff %s: unknown type", item.Uri)

	default:
		ui.logger.Printf("sniff %s: %s", item.Uri, mime)
	}
	return true
}
