// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/stvp/playback"
)

const (
	overlayHeight   = 1
	clockWidth      = 13
	defaultBarWidth = 40
)

type PlayerPage struct {
	Root *tview.Flex

	titleView *tview.TextView
	surface   *tview.Box

	// control overlay
	overlay       *tview.Flex
	rewindButton  *tview.Button
	playButton    *tview.Button
	forwardButton *tview.Button

	progressBar  *tview.TextView
	progressTime *tview.TextView

	buttonStyle tcell.Style

	// external refs
	ui *Ui
}

func (ui *Ui) createPlayerPage() *PlayerPage {
	opts := ui.controller.Options()
	playerPage := PlayerPage{
		buttonStyle: tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
		ui:          ui,
	}

	playerPage.titleView = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetScrollable(false)

	// the area where mpv shows the video; a click toggles the controls
	playerPage.surface = tview.NewBox().SetBorder(true)
	playerPage.surface.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action == tview.MouseLeftClick {
			ui.controller.ToggleOverlayVisibility()
			return action, nil
		}
		return action, event
	})

	playerPage.rewindButton = playerPage.newControlButton(rewindLabel(opts.SkipBackward), playback.Rewind)
	playerPage.playButton = playerPage.newControlButton(playPauseLabel(false), playback.PlayToggle)
	playerPage.forwardButton = playerPage.newControlButton(fastForwardLabel(opts.SkipForward), playback.FastForward)

	playerPage.overlay = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 0, 1, false).
		AddItem(playerPage.rewindButton, 12, 0, false).
		AddItem(nil, 2, 0, false).
		AddItem(playerPage.playButton, 12, 0, false).
		AddItem(nil, 2, 0, false).
		AddItem(playerPage.forwardButton, 12, 0, false).
		AddItem(nil, 0, 1, false)

	playerPage.progressBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	playerPage.progressTime = tview.NewTextView().
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetScrollable(false)

	progressFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(playerPage.progressBar, 0, 1, false).
		AddItem(playerPage.progressTime, clockWidth, 0, false)

	playerPage.Root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(playerPage.titleView, 1, 0, false).
		AddItem(playerPage.surface, 0, 1, true).
		AddItem(playerPage.overlay, 0, 0, false). // hidden
		AddItem(progressFlex, 1, 0, false)

	playerPage.Update(playback.State{}, "")

	return &playerPage
}

func (p *PlayerPage) newControlButton(label string, action playback.ControlAction) *tview.Button {
	button := tview.NewButton(label)
	button.SetStyle(p.buttonStyle)
	button.SetActivatedStyle(p.buttonStyle)
	button.SetSelectedFunc(func() {
		p.ui.handleControlAction(action)
	})
	return button
}

// Update renders state. Must be called from the tview goroutine.
func (p *PlayerPage) Update(state playback.State, uri string) {
	p.titleView.SetText(formatTitle(state.Title, uri))

	if state.ControlOverlayVisible {
		p.Root.ResizeItem(p.overlay, overlayHeight, 0)
	} else {
		p.Root.ResizeItem(p.overlay, 0, 0)
	}
	p.playButton.SetLabel(playPauseLabel(state.IsPlaying))

	_, _, width, _ := p.progressBar.GetInnerRect()
	if width <= 0 {
		width = defaultBarWidth
	}
	p.progressBar.SetText(formatProgressBar(state.PlayProgress, state.BufferProgress, width))
	p.progressTime.SetText(formatClock(state.CurrentPosition, state.Duration))
}
