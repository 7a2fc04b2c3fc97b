// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

const maxLogLines = 200

type LogPage struct {
	Root *tview.Flex

	header  *tview.TextView
	logList *tview.List

	// where the log goes besides this page
	mirror string

	// external refs
	ui *Ui
}

func (ui *Ui) createLogPage() *LogPage {
	logPage := LogPage{
		mirror: ui.config.LogFile,
		ui:     ui,
	}

	logPage.header = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetText(formatLogHeader(logPage.mirror, 0))
	logPage.logList = tview.NewList().ShowSecondaryText(false)

	logPage.Root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(logPage.header, 1, 0, false).
		AddItem(logPage.logList, 0, 1, true)

	return &logPage
}

func (l *LogPage) Print(line string) {
	l.ui.app.QueueUpdateDraw(func() {
		line := time.Now().Local().Format("(15:04:05) ") + line
		l.logList.InsertItem(0, line, "", 0, nil)

		for l.logList.GetItemCount() > maxLogLines {
			l.logList.RemoveItem(-1)
		}
		l.header.SetText(formatLogHeader(l.mirror, l.logList.GetItemCount()))
	})
}

// formatLogHeader describes the JSON mirror of the log and how many of the
// newest lines the page keeps.
func formatLogHeader(mirror string, lines int) string {
	target := "[gray]not mirrored to a file"
	if mirror != "" {
		target = "JSON mirror: [::b]" + tview.Escape(mirror) + "[::-]"
	}
	return fmt.Sprintf("%s [gray](%d/%d lines)", target, lines, maxLogLines)
}
