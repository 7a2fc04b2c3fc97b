package mpvplayer

import (
	"testing"
	"time"

	"github.com/spezifisch/stvp/playback"
	"github.com/stretchr/testify/assert"
)

func TestCommandArgs(t *testing.T) {
	testCases := []struct {
		name     string
		cmd      playback.Command
		expected []string
	}{
		{"play", playback.Play(), []string{"set", "pause", "no"}},
		{"pause", playback.Pause(), []string{"set", "pause", "yes"}},
		{"seek to start", playback.SeekTo(0), []string{"seek", "0.000", "absolute"}},
		{"seek fractional", playback.SeekTo(105*time.Second + 250*time.Millisecond), []string{"seek", "105.250", "absolute"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args, err := commandArgs(tc.cmd)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, args)
		})
	}
}

func TestCommandArgsUnknown(t *testing.T) {
	_, err := commandArgs(playback.Command{Type: playback.CommandType(99)})
	assert.Error(t, err)
}

func TestSecondsToDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, secondsToDuration(1.5))
	assert.Equal(t, time.Duration(0), secondsToDuration(-3))
}

func TestVideoItemNilSafe(t *testing.T) {
	var item *VideoItem
	assert.Equal(t, "", item.GetTitle())
	assert.Equal(t, time.Duration(0), item.GetDuration())
	assert.False(t, item.IsValid())

	item = &VideoItem{Uri: "clip.mp4", Title: "clip"}
	assert.True(t, item.IsValid())
	assert.Equal(t, "clip", item.GetTitle())
}

func TestUiEventTypeString(t *testing.T) {
	assert.Equal(t, "ended", EventEnded.String())
	assert.Equal(t, "unknown", UiEventType(42).String())
}
