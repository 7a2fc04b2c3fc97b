// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"path"
	"text/template"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/stvp/logger"
)

// columns: now playing, title, source
const videoDataColumns = 3
const nowPlayingIcon = "▶"

// data for rendering the video table
type videoData struct {
	tview.TableContentReadOnly

	// our copy of the playlist
	videos  []string
	current int
	// returns a cached title; drawing must not queue lookups
	title func(source string) (string, bool)
}

var _ tview.TableContent = (*videoData)(nil)

// videoInfo is rendered into the info pane
type videoInfo struct {
	Title   string
	Source  string
	Session string
}

type VideosPage struct {
	Root *tview.Flex

	videoList *tview.Table
	videoData videoData

	videoInfo *tview.TextView

	// external refs
	ui     *Ui
	logger logger.LoggerInterface

	videoInfoTemplate *template.Template
}

func (ui *Ui) createVideosPage() *VideosPage {
	videoInfoTemplate, err := template.New("video info").Parse(videoInfoTemplateString)
	if err != nil {
		ui.logger.PrintError("createVideosPage", err)
	}
	videosPage := VideosPage{
		ui:                ui,
		logger:            ui.logger,
		videoInfoTemplate: videoInfoTemplate,
	}

	// main table
	videosPage.videoList = tview.NewTable().
		SetSelectable(true, false). // rows selectable
		SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorLightGray).Foreground(tcell.ColorBlack))
	videosPage.videoList.Box.
		SetTitle(" videos ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)
	videosPage.videoList.SetSelectedFunc(func(row, column int) {
		if err := ui.startVideo(row); err != nil {
			videosPage.logger.PrintError("videosPage: startVideo", err)
		}
	})

	// video info
	videosPage.videoInfo = tview.NewTextView()
	videosPage.videoInfo.SetDynamicColors(true).SetScrollable(true).SetBorder(true).SetTitle("Video Info")

	videosPage.videoList.SetSelectionChangedFunc(videosPage.changeSelection)

	// flex wrapper
	videosPage.Root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(videosPage.videoList, 0, 2, true).
		AddItem(videosPage.videoInfo, 0, 1, false)

	// private data
	videosPage.videoData = videoData{
		title: ui.titles.Peek,
	}

	return &videosPage
}

// changeSelection queues the title lookup of the selected row.
func (v *VideosPage) changeSelection(row, column int) {
	if row >= 0 && row < len(v.videoData.videos) {
		v.ui.titles.Get(v.videoData.videos[row])
	}
	v.renderInfo(row, column)
}

func (v *VideosPage) renderInfo(row, column int) {
	v.videoInfo.Clear()
	if row >= len(v.videoData.videos) || row < 0 || column < 0 || v.videoInfoTemplate == nil {
		return
	}

	source := v.videoData.videos[row]
	info := videoInfo{Source: source}
	info.Title, _ = v.videoData.title(source)

	v.ui.mu.Lock()
	if v.ui.current.Uri == source && row == v.videoData.current {
		info.Session = v.ui.current.SessionId
	}
	v.ui.mu.Unlock()

	_ = v.videoInfoTemplate.Execute(v.videoInfo, info)
}

// UpdateVideos re-reads the playlist and the current video from the Ui.
// Must be called from the tview goroutine.
func (v *VideosPage) UpdateVideos() {
	wasEmpty := len(v.videoData.videos) == 0

	v.ui.mu.Lock()
	v.videoData.videos = append(v.videoData.videos[:0], v.ui.videos...)
	v.videoData.current = v.ui.videoIndex
	v.ui.mu.Unlock()

	// tell tview table to update its data
	v.videoList.SetContent(&v.videoData)
	v.ui.menuWidget.SetPosition(v.videoData.current, len(v.videoData.videos))

	// by default we're scrolled down after initially adding rows, fix this
	if wasEmpty {
		v.videoList.ScrollToBeginning()
	}

	r, c := v.videoList.GetSelection()
	v.renderInfo(r, c)
}

// videoData methods, used by tview to lazily render the table
func (v *videoData) GetCell(row, column int) *tview.TableCell {
	if row >= len(v.videos) || column >= videoDataColumns || row < 0 || column < 0 {
		return nil
	}
	source := v.videos[row]

	switch column {
	case 0: // now playing
		text := " "
		if row == v.current {
			text = nowPlayingIcon
		}
		return &tview.TableCell{
			Text:        text,
			Color:       tcell.ColorGreen,
			Expansion:   0,
			MaxWidth:    1,
			Transparent: true,
		}
	case 1: // title
		title, _ := v.title(source)
		return &tview.TableCell{
			Text:        tview.Escape(title),
			Expansion:   1,
			Transparent: true,
		}
	case 2: // source
		return &tview.TableCell{
			Text:        tview.Escape(path.Base(source)),
			Color:       tcell.ColorGray,
			Expansion:   1,
			Transparent: true,
		}
	}

	return nil
}

// Return the total number of rows in the table.
func (v *videoData) GetRowCount() int {
	return len(v.videos)
}

// Return the total number of columns in the table.
func (v *videoData) GetColumnCount() int {
	return videoDataColumns
}

var videoInfoTemplateString = `[blue::b]Title:[-:-:-:-] [green::i]{{.Title}}[-:-:-:-]
[blue::b]Source:[-:-:-:-] [::i]{{.Source}}[-:-:-:-]
{{if .Session}}[blue::b]Session:[-:-:-:-] [::i]{{.Session}}[-:-:-:-]{{end}}`
