// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/spezifisch/stvp/logger"
	"github.com/spezifisch/stvp/playback"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisRoot        = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisName        = "org.mpris.MediaPlayer2.stvp"
	trackIdPrefix    = "/org/stvp/track/"
)

type MprisPlayer struct {
	dbus   *dbus.Conn
	props  *prop.Properties
	player ControlledPlayer
	logger logger.LoggerInterface
}

func RegisterMprisPlayer(player ControlledPlayer, logger_ logger.LoggerInterface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:   conn,
		player: player,
		logger: logger_,
	}

	err = conn.Export(mpp, mprisPath, mprisPlayerIface)
	if err != nil {
		return
	}
	err = conn.Export(mprisRootObject{mpp}, mprisPath, mprisRoot)
	if err != nil {
		return
	}

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Metadata":       {Value: trackMetadata(nil, ""), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Volume":         {Value: float64(1.0), Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"PlaybackStatus": {Value: playbackStatus(player.PlaybackState()), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		// position changes continuously, clients poll it
		"Position": {Value: int64(0), Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Rate":     {Value: float64(1.0), Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "stvp", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: []string{"file", "http", "https"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: []string{"video/mp4", "video/webm", "video/x-matroska"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	mpp.props, err = prop.Export(
		conn,
		mprisPath,
		map[string]map[string]*prop.Prop{
			mprisRoot:        mediaPlayer,
			mprisPlayerIface: mprisPlayer,
		},
	)
	if err != nil {
		return
	}

	n := &introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       mprisRoot,
				Methods:    introspect.Methods(mprisRootObject{mpp}),
				Properties: mpp.props.Introspection(mprisRoot),
			},
			{
				Name:       mprisPlayerIface,
				Methods:    introspect.Methods(mpp),
				Properties: mpp.props.Introspection(mprisPlayerIface), // we implement the standard interface
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), mprisPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	// our unique name
	reply, err := conn.RequestName(mprisName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}

	player.OnStateChange(mpp.onStateChange)
	player.OnVideoChange(mpp.onVideoChange)
	return
}

func (m *MprisPlayer) Close() {
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpp Close", err)
	}
}

// Mandatory functions
func (m *MprisPlayer) Stop() *dbus.Error {
	// there is no stopped state, stop just pauses
	return m.Pause()
}

func (m *MprisPlayer) Next() *dbus.Error {
	if err := m.player.NextVideo(); err != nil {
		m.logger.PrintError("mpp NextVideo", err)
	}
	return nil
}

func (m *MprisPlayer) Previous() *dbus.Error {
	if err := m.player.PreviousVideo(); err != nil {
		m.logger.PrintError("mpp PreviousVideo", err)
	}
	return nil
}

// set paused
func (m *MprisPlayer) Pause() *dbus.Error {
	if m.player.PlaybackState().IsPlaying {
		m.action(playback.PlayToggle)
	}
	return nil
}

// set playing
func (m *MprisPlayer) Play() *dbus.Error {
	if !m.player.PlaybackState().IsPlaying {
		m.action(playback.PlayToggle)
	}
	return nil
}

func (m *MprisPlayer) PlayPause() *dbus.Error {
	m.action(playback.PlayToggle)
	return nil
}

// Seek moves by the configured skip interval in the direction of offset
// (microseconds); the magnitude is not used.
func (m *MprisPlayer) Seek(offset int64) *dbus.Error {
	if action, ok := seekAction(offset); ok {
		m.action(action)
	}
	return nil
}

func (m *MprisPlayer) SetPosition(trackId dbus.ObjectPath, position int64) *dbus.Error {
	// absolute positioning is not one of our control actions
	m.logger.Printf("mpris: SetPosition %s %d not supported", trackId, position)
	return nil
}

func (m *MprisPlayer) OpenUri(uri string) *dbus.Error {
	m.logger.Printf("mpris: OpenUri %s not supported", uri)
	return nil
}

func (m *MprisPlayer) action(action playback.ControlAction) {
	if err := m.player.HandleControlAction(action); err != nil {
		m.logger.PrintError("mpp "+action.String(), err)
	}
}

func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	fVol, ok := c.Value.(float64)
	if !ok {
		return prop.ErrInvalidArg
	}

	// convert to %
	percentVol := int64(math.Round(fVol * 100))
	if err := m.player.SetVolume(percentVol); err != nil {
		m.logger.PrintError("volumeChange", err)
	} else {
		m.logger.Printf("mpris: adjust volume %f -> %d%%", fVol, percentVol)
	}
	return nil
}

func (m *MprisPlayer) onStateChange(state playback.State) {
	m.props.SetMust(mprisPlayerIface, "PlaybackStatus", playbackStatus(state))
	m.props.SetMust(mprisPlayerIface, "Position", state.CurrentPosition.Microseconds())
}

func (m *MprisPlayer) onVideoChange(track TrackInterface) {
	m.logger.Print("mpris: OnVideoChange called")
	m.props.SetMust(mprisPlayerIface, "Metadata", trackMetadata(track, track.GetTitle()))
}

// root interface methods live on a separate type so they do not collide
// with the player interface in introspection
type mprisRootObject struct {
	m *MprisPlayer
}

func (r mprisRootObject) Raise() *dbus.Error { return nil }
func (r mprisRootObject) Quit() *dbus.Error  { return nil }

func playbackStatus(state playback.State) string {
	switch {
	case state.IsPlaying:
		return "Playing"
	case state.Duration == 0 && state.CurrentPosition == 0 && state.PlayProgress == 0:
		return "Stopped"
	default:
		return "Paused"
	}
}

func seekAction(offset int64) (playback.ControlAction, bool) {
	switch {
	case offset > 0:
		return playback.FastForward, true
	case offset < 0:
		return playback.Rewind, true
	}
	return 0, false
}

func trackMetadata(track TrackInterface, title string) map[string]dbus.Variant {
	trackId := dbus.ObjectPath(trackIdPrefix + "none")
	var length time.Duration
	if track != nil && track.IsValid() {
		if id := track.GetId(); id != "" {
			trackId = dbus.ObjectPath(trackIdPrefix + strings.ReplaceAll(id, "-", ""))
		}
		length = track.GetDuration()
	}

	return map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackId),
		"mpris:length":  dbus.MakeVariant(length.Microseconds()),
		"xesam:title":   dbus.MakeVariant(title),
	}
}
