// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"github.com/supersonic-app/go-mpv"
)

var observedProperties = []struct {
	name   string
	format mpv.Format
}{
	{"time-pos", mpv.FORMAT_DOUBLE},
	{"duration", mpv.FORMAT_DOUBLE},
	{"demuxer-cache-time", mpv.FORMAT_DOUBLE},
	{"pause", mpv.FORMAT_FLAG},
	{"eof-reached", mpv.FORMAT_FLAG},
	{"volume", mpv.FORMAT_INT64},
}

func (p *Player) EventLoop() {
	for _, prop := range observedProperties {
		if err := p.instance.ObserveProperty(0, prop.name, prop.format); err != nil {
			p.logger.PrintError("Observe "+prop.name, err)
		}
	}

	for evt := range p.mpvEvents {
		if evt == nil {
			// quit signal
			break
		}

		switch evt.Event_Id {
		case mpv.EVENT_PROPERTY_CHANGE:
			// one of our observed properties changed; report all of them
			status := p.readStatus()
			p.sendGuiDataEvent(EventStatus, status)
			p.reportTransitions(status)

		case mpv.EVENT_START_FILE:
			p.mu.Lock()
			p.replaceInProgress = false
			p.stopped = false
			p.ended = false
			p.mu.Unlock()

		case mpv.EVENT_FILE_LOADED:
			status := p.readStatus()
			p.mu.Lock()
			p.paused = status.Paused
			current := p.current
			p.mu.Unlock()

			if status.Paused {
				p.sendGuiDataEvent(EventPaused, status)
			} else {
				p.sendGuiDataEvent(EventPlaying, current)
			}

		case mpv.EVENT_END_FILE:
			p.mu.Lock()
			replacing := p.replaceInProgress
			if !replacing {
				p.stopped = true
			}
			p.mu.Unlock()

			// we don't want to update anything if we're in the process of replacing the current video.
			// with keep-open this is only reached on stop or on a load error.
			if !replacing {
				p.logger.Print("mpv.EventLoop: stopped")
				p.sendGuiEvent(EventStopped)
			}

		case mpv.EVENT_SHUTDOWN:
			return

		case mpv.EVENT_IDLE, mpv.EVENT_NONE:
			continue

		default:
			p.logger.Printf("mpv.EventLoop: unhandled event id %v", evt.Event_Id)
		}
	}
}

// readStatus collects the observed properties. Properties that are not
// available (nothing loaded, live stream without duration) read as zero.
func (p *Player) readStatus() StatusData {
	position, _ := p.getPropertyDouble("time-pos")
	duration, _ := p.getPropertyDouble("duration")
	cached, _ := p.getPropertyDouble("demuxer-cache-time")
	volume, _ := p.getPropertyInt64("volume")
	paused, _ := p.getPropertyBool("pause")
	ended, _ := p.getPropertyBool("eof-reached")

	p.mu.Lock()
	p.timePos = position
	sessionId := p.current.SessionId
	if p.replaceInProgress {
		// properties still describe the previous file
		sessionId = ""
	}
	p.mu.Unlock()

	return StatusData{
		SessionId: sessionId,
		Volume:    volume,
		Position:  secondsToDuration(position),
		Duration:  secondsToDuration(duration),
		Buffered:  secondsToDuration(cached),
		Paused:    paused,
		Ended:     ended,
	}
}

// reportTransitions sends pause/play/end events when the status differs
// from what was last reported.
func (p *Player) reportTransitions(status StatusData) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	pauseChanged := status.Paused != p.paused
	p.paused = status.Paused
	endedNow := status.Ended && !p.ended
	p.ended = status.Ended
	current := p.current
	p.mu.Unlock()

	if pauseChanged {
		if status.Paused {
			p.sendGuiDataEvent(EventPaused, status)
		} else {
			p.sendGuiDataEvent(EventPlaying, current)
		}
	}
	// mpv pauses on the last frame first, so Ended follows Paused
	if endedNow {
		p.sendGuiEvent(EventEnded)
	}
}

func (p *Player) sendGuiEvent(typ UiEventType) {
	p.sendGuiDataEvent(typ, nil)
}

func (p *Player) sendGuiDataEvent(typ UiEventType, data interface{}) {
	if p.eventConsumer != nil {
		p.eventConsumer.SendEvent(UiEvent{
			Type: typ,
			Data: data,
		})
	}
}
