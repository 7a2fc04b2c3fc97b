// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/rivo/tview"
	"github.com/spezifisch/stvp/playback"
)

func makeModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewGrid().
		SetColumns(0, width, 0).
		SetRows(0, height, 0).
		AddItem(p, 1, 1, 1, 1, 0, 0, true)
}

func formatPlayerStatus(volume int64, position time.Duration, duration time.Duration) string {
	return fmt.Sprintf("[%d%%][::b][%s]", volume, formatClock(position, duration))
}

func formatClock(position time.Duration, duration time.Duration) string {
	positionMin, positionSec := durationToMinAndSec(position)
	durationMin, durationSec := durationToMinAndSec(duration)
	return fmt.Sprintf("%02d:%02d/%02d:%02d", positionMin, positionSec, durationMin, durationSec)
}

// formatPlaybackStatus is the text for the top left status bar
func formatPlaybackStatus(state playback.State, uri string) (text string) {
	switch {
	case state.IsPlaying:
		text = "[green::b]Playing[::-]"
	case state.Ended():
		text = "[red::b]Ended[::-]"
	case uri == "":
		text = "[red::b]Stopped[::-]"
	default:
		text = "[yellow::b]Paused[::-]"
	}
	if state.Title != "" {
		text += " [white]" + tview.Escape(state.Title)
	}
	return
}

// formatTitle falls back to the source name until the title is known
func formatTitle(title string, uri string) string {
	if title != "" {
		return "[::b]" + tview.Escape(title)
	}
	if uri == "" {
		return ""
	}
	return "[gray]" + tview.Escape(path.Base(uri))
}

// formatProgressBar draws played and buffered fractions into width cells.
func formatProgressBar(played float64, buffered float64, width int) string {
	if width <= 0 {
		return ""
	}
	playedCells := fractionToCells(played, width)
	bufferedCells := fractionToCells(buffered, width)
	if bufferedCells < playedCells {
		bufferedCells = playedCells
	}

	return "[white]" + strings.Repeat("█", playedCells) +
		"[gray]" + strings.Repeat("▒", bufferedCells-playedCells) +
		"[darkgray]" + strings.Repeat("░", width-bufferedCells) + "[-]"
}

func fractionToCells(fraction float64, width int) int {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return width
	}
	return int(math.Round(fraction * float64(width)))
}

func playPauseLabel(isPlaying bool) string {
	if isPlaying {
		return "⏸ pause"
	}
	return "▶ play"
}

func rewindLabel(skip time.Duration) string {
	return fmt.Sprintf("« %ds", int(skip.Seconds()))
}

func fastForwardLabel(skip time.Duration) string {
	return fmt.Sprintf("%ds »", int(skip.Seconds()))
}

func formatPlaylistPosition(index int, total int) string {
	if total <= 1 || index < 0 || index >= total {
		return ""
	}
	return fmt.Sprintf("[gray]video %d/%d[-]", index+1, total)
}
