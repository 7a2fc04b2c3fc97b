// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"io/fs"
	"maps"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// commands keys can be bound to
const (
	cmdPlayToggle    = "play-toggle"
	cmdFastForward   = "fast-forward"
	cmdRewind        = "rewind"
	cmdToggleOverlay = "toggle-overlay"
	cmdNextVideo     = "next-video"
	cmdPreviousVideo = "previous-video"
	cmdVolumeUp      = "volume-up"
	cmdVolumeDown    = "volume-down"
	cmdShowPlayer    = "show-player"
	cmdShowVideos    = "show-videos"
	cmdShowLog       = "show-log"
	cmdShowHelp      = "show-help"
	cmdQuit          = "quit"

	// unbinds a default key
	cmdNone = "none"
)

// bindingContext is the table of the keybinding file that holds our keys
const bindingContext = "Default"

var knownCommands = map[string]struct{}{
	cmdPlayToggle: {}, cmdFastForward: {}, cmdRewind: {}, cmdToggleOverlay: {},
	cmdNextVideo: {}, cmdPreviousVideo: {}, cmdVolumeUp: {}, cmdVolumeDown: {},
	cmdShowPlayer: {}, cmdShowVideos: {}, cmdShowLog: {}, cmdShowHelp: {}, cmdQuit: {},
}

// key names are runes, "Space", or tcell key names like "Right"
var defaultKeyBindings = map[string]string{
	"p":     cmdPlayToggle,
	"Space": cmdPlayToggle,
	".":     cmdFastForward,
	"Right": cmdFastForward,
	",":     cmdRewind,
	"Left":  cmdRewind,
	"o":     cmdToggleOverlay,
	"Enter": cmdToggleOverlay,
	"-":     cmdVolumeDown,
	"+":     cmdVolumeUp,
	"=":     cmdVolumeUp,
	">":     cmdNextVideo,
	"<":     cmdPreviousVideo,
	"1":     cmdShowPlayer,
	"2":     cmdShowVideos,
	"3":     cmdShowLog,
	"?":     cmdShowHelp,
	"Q":     cmdQuit,
}

// loadKeyBindings returns the built-in bindings overridden by the Default
// table of the file at path. A missing file leaves the built-in bindings.
// Entries with unknown commands are skipped and reported in the error.
func loadKeyBindings(path string) (map[string]string, error) {
	bindings := maps.Clone(defaultKeyBindings)
	if path == "" {
		return bindings, nil
	}

	var file map[string]map[string]string
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bindings, nil
		}
		return bindings, errors.Wrapf(err, "keybindings %s", path)
	}

	var unknown []string
	for key, command := range file[bindingContext] {
		if command == cmdNone {
			delete(bindings, key)
			continue
		}
		if _, ok := knownCommands[command]; !ok {
			unknown = append(unknown, key+"="+command)
			continue
		}
		bindings[key] = command
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return bindings, errors.Errorf("keybindings %s: unknown commands %v", path, unknown)
	}
	return bindings, nil
}

func keyName(event *tcell.EventKey) string {
	if event.Key() == tcell.KeyRune {
		if event.Rune() == ' ' {
			return "Space"
		}
		return string(event.Rune())
	}
	return tcell.KeyNames[event.Key()]
}
