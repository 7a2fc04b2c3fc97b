// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/stvp/logger"
	"github.com/spezifisch/stvp/metadata"
	"github.com/spezifisch/stvp/mpvplayer"
	"github.com/spezifisch/stvp/playback"
	"github.com/spezifisch/stvp/remote"
)

// struct contains all the updatable elements of the Ui
type Ui struct {
	app   *tview.Application
	pages *tview.Pages

	// top bar
	startStopStatus *tview.TextView
	playerStatus    *tview.TextView

	// bottom bar
	menuWidget *MenuWidget

	// player page
	playerPage *PlayerPage

	// videos page
	videosPage *VideosPage

	// log page
	logPage *LogPage

	// modals
	messageBox *tview.Modal
	helpModal  tview.Primitive
	helpWidget *HelpWidget

	eventLoop *eventLoop
	mpvEvents chan mpvplayer.UiEvent

	controller *playback.Controller
	titles     *Cache[string]
	sniffer    *metadata.Sniffer

	// playlist and the current viewing session
	mu             sync.Mutex
	videos         []string
	videoIndex     int
	current        mpvplayer.VideoItem
	videoCallbacks []func(remote.TrackInterface)

	// key name -> command, see keybindings.go
	keys map[string]string

	config playerConfig
	player *mpvplayer.Player
	logger *logger.Logger
}

var _ remote.ControlledPlayer = (*Ui)(nil)

const (
	// page identifiers (use these instead of hardcoding page names for showing/hiding)
	PagePlayer = "player"
	PageVideos = "videos"
	PageLog    = "log"

	PageMessageBox = "messageBox"
	PageHelpBox    = "helpBox"
)

func InitGui(videos []string,
	config playerConfig,
	player *mpvplayer.Player,
	logger *logger.Logger) (ui *Ui) {
	ui = &Ui{
		eventLoop: nil, // initialized by initEventLoops()
		mpvEvents: make(chan mpvplayer.UiEvent, 5),

		videos: videos,
		config: config,
		player: player,
		logger: logger,
	}

	var err error
	ui.keys, err = loadKeyBindings(config.Keybindings)
	if err != nil {
		logger.PrintError("InitGui: keybindings", err)
	}

	ui.controller = playback.NewController(player, config.Skip, logger)
	ui.sniffer = metadata.NewSniffer(2)

	prober := metadata.NewProber(config.FFprobe)
	lru := NewLRU(config.CacheSize)
	ui.titles = NewCache(
		"",
		func(ctx context.Context, source string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, config.MetadataTimeout)
			defer cancel()
			return prober.Title(ctx, source)
		},
		ui.titleFetched,
		lru.Touch,
		logger,
	)

	ui.initEventLoops()

	ui.app = tview.NewApplication()
	ui.pages = tview.NewPages()

	// status text at the top
	ui.startStopStatus = tview.NewTextView().SetText(formatPlaybackStatus(playback.State{}, "")).
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(false)
	ui.startStopStatus.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})

	statusRight := formatPlayerStatus(0, 0, 0)
	ui.playerStatus = tview.NewTextView().SetText(statusRight).
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetScrollable(false)

	ui.menuWidget = ui.createMenuWidget()
	ui.helpWidget = ui.createHelpWidget()

	// message box for small notes
	ui.messageBox = tview.NewModal().
		SetText("hi there").
		SetBackgroundColor(tcell.ColorBlack)
	ui.messageBox.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		ui.pages.HidePage(PageMessageBox)
		return event
	})

	// help box modal
	ui.helpModal = makeModal(ui.helpWidget.Root, 60, 24)
	ui.helpWidget.Root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// only close on ESC, like the help text says
		if ui.helpWidget.visible && (event.Key() == tcell.KeyEscape) {
			ui.CloseHelp()
		}
		return event
	})

	// top bar: status text
	topBarFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ui.startStopStatus, 0, 1, false).
		AddItem(ui.playerStatus, 20, 0, false)

	// player page
	ui.playerPage = ui.createPlayerPage()

	// videos page
	ui.videosPage = ui.createVideosPage()

	// log page
	ui.logPage = ui.createLogPage()

	ui.pages.AddPage(PagePlayer, ui.playerPage.Root, true, true).
		AddPage(PageVideos, ui.videosPage.Root, true, false).
		AddPage(PageMessageBox, ui.messageBox, true, false).
		AddPage(PageHelpBox, ui.helpModal, true, false).
		AddPage(PageLog, ui.logPage.Root, true, false)

	rootFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBarFlex, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.menuWidget.Root, 1, 0, false)

	// add main input handler
	rootFlex.SetInputCapture(ui.handlePageInput)

	ui.app.SetRoot(rootFlex, true).
		SetFocus(rootFlex).
		EnableMouse(true)

	// every state change is rendered
	ui.controller.Subscribe(func(state playback.State) {
		ui.app.QueueUpdateDraw(func() {
			ui.renderState(state)
		})
	})

	return ui
}

func (ui *Ui) Run() error {
	// receive events from mpv wrapper
	ui.player.RegisterEventConsumer(ui)

	// run gui/background event handler
	ui.runEventLoops()

	// run mpv event handler
	go ui.player.EventLoop()

	// first session
	if err := ui.startVideo(0); err != nil {
		return err
	}

	// gui main loop (blocking)
	return ui.app.Run()
}

func (ui *Ui) renderState(state playback.State) {
	ui.mu.Lock()
	uri := ui.current.Uri
	ui.mu.Unlock()

	ui.startStopStatus.SetText(formatPlaybackStatus(state, uri))
	ui.playerPage.Update(state, uri)
}

func (ui *Ui) ShowHelp() {
	activePage := ui.menuWidget.GetActivePage()
	ui.helpWidget.RenderHelp(activePage)

	ui.pages.ShowPage(PageHelpBox)
	ui.pages.SendToFront(PageHelpBox)
	ui.app.SetFocus(ui.helpModal)
	ui.helpWidget.visible = true
}

func (ui *Ui) CloseHelp() {
	ui.helpWidget.visible = false
	ui.pages.HidePage(PageHelpBox)
}

func (ui *Ui) showMessageBox(text string) {
	ui.pages.ShowPage(PageMessageBox)
	ui.messageBox.SetText(text)
	ui.app.SetFocus(ui.messageBox)
}

func (ui *Ui) showMessageBoxf(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	ui.app.QueueUpdateDraw(func() {
		ui.showMessageBox(text)
	})
}
