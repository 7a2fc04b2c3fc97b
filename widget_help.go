package main

import (
	"strings"

	"github.com/rivo/tview"
)

type HelpWidget struct {
	Root *tview.Flex

	helpBook                *tview.Flex
	leftColumn, rightColumn *tview.TextView

	// visible reflects whether the modal is shown
	visible bool

	// external references
	ui *Ui
}

func (ui *Ui) createHelpWidget() (m *HelpWidget) {
	m = &HelpWidget{
		ui: ui,
	}

	// keys on the left, page help on the right
	m.leftColumn = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true)
	m.rightColumn = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true)
	m.helpBook = tview.NewFlex().
		SetDirection(tview.FlexColumn)

	m.Root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.helpBook, 0, 1, false).
		AddItem(tview.NewTextView().SetText("ESC to close").SetTextAlign(tview.AlignCenter), 1, 0, false)

	m.Root.Box.SetBorder(true).SetTitle(" Help ")

	return
}

func (h *HelpWidget) RenderHelp(page string) {
	opts := h.ui.controller.Options()
	h.leftColumn.SetText(helpSection("Playback", helpPlayback(opts.SkipBackward, opts.SkipForward)))

	title, text := helpForPage(page)
	h.helpBook.Clear()
	if text == "" {
		h.rightColumn.SetText("")
		h.helpBook.AddItem(h.leftColumn, 0, 1, false)
		return
	}

	h.rightColumn.SetText(helpSection(title, text))
	h.helpBook.AddItem(h.leftColumn, 38, 0, false).
		AddItem(h.rightColumn, 0, 1, true) // gets focus for scrolling
}

func helpSection(title string, text string) string {
	return "[::b]" + title + "[::-]\n" + tview.Escape(strings.TrimSpace(text))
}
