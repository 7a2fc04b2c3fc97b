// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spezifisch/stvp/logger"
	"github.com/spezifisch/stvp/playback"
	"github.com/supersonic-app/go-mpv"
)

var ErrNothingLoaded = errors.New("no media loaded")

// options every instance starts with; user options may override them
var defaultOptions = map[string]string{
	// stay paused on the last frame at end of file so a seek can restart it
	"keep-open": "yes",
	"idle":      "yes",
	"osc":       "no",
}

type Player struct {
	instance      *mpv.Mpv
	mpvEvents     chan *mpv.Event
	eventConsumer EventConsumer
	logger        logger.LoggerInterface

	mu                sync.Mutex
	current           VideoItem
	replaceInProgress bool
	stopped           bool
	paused            bool
	ended             bool
	timePos           float64
}

var _ playback.CommandSink = (*Player)(nil)

func NewPlayer(logger logger.LoggerInterface, options map[string]string) (player *Player, err error) {
	mpvInstance := mpv.Create()

	merged := make(map[string]string, len(defaultOptions)+len(options))
	for k, v := range defaultOptions {
		merged[k] = v
	}
	for k, v := range options {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err = mpvInstance.SetOptionString(k, merged[k]); err != nil {
			mpvInstance.TerminateDestroy()
			err = errors.Wrapf(err, "mpv option %s=%s", k, merged[k])
			return
		}
	}

	if err = mpvInstance.Initialize(); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}

	player = &Player{
		instance:      mpvInstance,
		mpvEvents:     make(chan *mpv.Event, 16),
		eventConsumer: nil, // must be set by calling RegisterEventConsumer()
		logger:        logger,
		stopped:       true,
		paused:        true,
	}

	go player.mpvEngineEventHandler(mpvInstance)
	return
}

func (p *Player) mpvEngineEventHandler(instance *mpv.Mpv) {
	for {
		evt := instance.WaitEvent(1)
		if evt == nil {
			continue
		}
		p.mpvEvents <- evt
		if evt.Event_Id == mpv.EVENT_SHUTDOWN {
			return
		}
	}
}

func (p *Player) Quit() {
	p.mpvEvents <- nil
	p.instance.TerminateDestroy()
}

func (p *Player) RegisterEventConsumer(consumer EventConsumer) {
	p.eventConsumer = consumer
}

// Load replaces the current media. The player starts paused unless autoplay
// is set.
func (p *Player) Load(item VideoItem, autoplay bool) error {
	p.mu.Lock()
	p.current = item
	p.replaceInProgress = true
	p.ended = false
	p.mu.Unlock()

	if err := p.instance.SetProperty("pause", mpv.FORMAT_FLAG, !autoplay); err != nil {
		p.logger.PrintError("Load: set pause", err)
	}
	return errors.Wrapf(p.instance.Command([]string{"loadfile", item.Uri, "replace"}), "loadfile %s", item.Uri)
}

// Execute sends a playback command to mpv without waiting for it to apply.
func (p *Player) Execute(cmd playback.Command) error {
	args, err := commandArgs(cmd)
	if err != nil {
		return err
	}

	if loaded, err := p.IsLoaded(); err != nil {
		return errors.Wrap(err, "idle-active")
	} else if !loaded {
		return ErrNothingLoaded
	}

	return errors.Wrapf(p.instance.Command(args), "mpv %s", strings.Join(args, " "))
}

func commandArgs(cmd playback.Command) ([]string, error) {
	switch cmd.Type {
	case playback.CommandPlay:
		return []string{"set", "pause", "no"}, nil
	case playback.CommandPause:
		return []string{"set", "pause", "yes"}, nil
	case playback.CommandSeekTo:
		return []string{"seek", strconv.FormatFloat(cmd.Position.Seconds(), 'f', 3, 64), "absolute"}, nil
	}
	return nil, errors.Errorf("unknown command type %d", cmd.Type)
}

func (p *Player) Stop() error {
	p.logger.Printf("stopping (user)")
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	return p.instance.Command([]string{"stop"})
}

func (p *Player) IsLoaded() (bool, error) {
	idle, err := p.getPropertyBool("idle-active")
	return !idle, err
}

func (p *Player) IsPaused() (bool, error) {
	return p.getPropertyBool("pause")
}

func (p *Player) Current() VideoItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// GetTimePos returns the last reported playback position in seconds.
func (p *Player) GetTimePos() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timePos
}

func (p *Player) SetVolume(percentValue int64) error {
	if percentValue > 100 {
		percentValue = 100
	} else if percentValue < 0 {
		percentValue = 0
	}

	return p.instance.SetProperty("volume", mpv.FORMAT_INT64, percentValue)
}

func (p *Player) AdjustVolume(increment int64) error {
	volume, err := p.instance.GetProperty("volume", mpv.FORMAT_INT64)
	if err != nil {
		return err
	}
	if volume == nil {
		return nil
	}

	return p.SetVolume(volume.(int64) + increment)
}

func (p *Player) Volume() (int64, error) {
	return p.getPropertyInt64("volume")
}
