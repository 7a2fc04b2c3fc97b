package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlayToggleAfterEndRestarts(t *testing.T) {
	state := State{IsPlaying: false, PlayProgress: 1.0, CurrentPosition: 120 * time.Second, ControlOverlayVisible: true}

	commands, next := HandleControlAction(PlayToggle, state, DefaultOptions())

	assert.Equal(t, []Command{SeekTo(0), Play()}, commands)
	assert.True(t, next.IsPlaying)
	assert.False(t, next.ControlOverlayVisible)
	assert.Equal(t, time.Duration(0), next.CurrentPosition)

	// progress only resets once the player confirms the new position
	assert.Equal(t, 1.0, next.PlayProgress)
	next = HandleTelemetryEvent(Progress(0, 120*time.Second, 30*time.Second), next)
	assert.Equal(t, 0.0, next.PlayProgress)
	assert.Equal(t, 0.25, next.BufferProgress)
}

func TestPlayToggleAfterEndForAnyProgressAtOrPastEnd(t *testing.T) {
	for _, p := range []float64{1, 1.5, 100} {
		commands, _ := HandleControlAction(PlayToggle, State{PlayProgress: p}, DefaultOptions())
		assert.Equal(t, []Command{SeekTo(0), Play()}, commands, "progress %v", p)
	}
}

func TestPlayToggle(t *testing.T) {
	testCases := []struct {
		name            string
		state           State
		expectedCommand Command
		expectedPlaying bool
		expectedOverlay bool
	}{
		{
			name:            "paused to playing hides overlay",
			state:           State{PlayProgress: 0.3, ControlOverlayVisible: true},
			expectedCommand: Play(),
			expectedPlaying: true,
			expectedOverlay: false,
		},
		{
			name:            "playing to paused keeps visible overlay",
			state:           State{IsPlaying: true, ControlOverlayVisible: true},
			expectedCommand: Pause(),
			expectedPlaying: false,
			expectedOverlay: true,
		},
		{
			name:            "playing to paused keeps hidden overlay",
			state:           State{IsPlaying: true},
			expectedCommand: Pause(),
			expectedPlaying: false,
			expectedOverlay: false,
		},
		{
			name:            "playing at end pauses",
			state:           State{IsPlaying: true, PlayProgress: 1},
			expectedCommand: Pause(),
			expectedPlaying: false,
			expectedOverlay: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			commands, next := HandleControlAction(PlayToggle, tc.state, DefaultOptions())
			assert.Equal(t, []Command{tc.expectedCommand}, commands)
			assert.Equal(t, tc.expectedPlaying, next.IsPlaying)
			assert.Equal(t, tc.expectedOverlay, next.ControlOverlayVisible)
			assert.Equal(t, tc.state.PlayProgress, next.PlayProgress)
		})
	}
}

func TestRewindClampsAtZero(t *testing.T) {
	commands, next := HandleControlAction(Rewind, State{CurrentPosition: 3 * time.Second}, DefaultOptions())

	assert.Equal(t, []Command{SeekTo(0)}, commands)
	assert.Equal(t, time.Duration(0), next.CurrentPosition)
}

func TestRewindNeverSeeksNegative(t *testing.T) {
	opts := DefaultOptions()
	for pos := time.Duration(0); pos <= 20*time.Second; pos += 250 * time.Millisecond {
		commands, _ := HandleControlAction(Rewind, State{CurrentPosition: pos}, opts)
		if assert.Len(t, commands, 1) {
			assert.Equal(t, CommandSeekTo, commands[0].Type)
			assert.GreaterOrEqual(t, commands[0].Position, time.Duration(0))
			assert.Equal(t, max(0, pos-5*time.Second), commands[0].Position)
		}
	}
}

func TestFastForward(t *testing.T) {
	commands, next := HandleControlAction(FastForward, State{CurrentPosition: 100 * time.Second}, DefaultOptions())

	assert.Equal(t, []Command{SeekTo(105 * time.Second)}, commands)
	assert.Equal(t, 105*time.Second, next.CurrentPosition)
}

func TestFastForwardIsNotClampedToDuration(t *testing.T) {
	state := State{CurrentPosition: 58 * time.Second, Duration: 60 * time.Second}

	commands, _ := HandleControlAction(FastForward, state, DefaultOptions())

	assert.Equal(t, []Command{SeekTo(63 * time.Second)}, commands)
}

func TestSkipIntervalsAreConfigurable(t *testing.T) {
	opts := Options{SkipForward: 10 * time.Second, SkipBackward: 5 * time.Second}
	state := State{CurrentPosition: 30 * time.Second}

	commands, _ := HandleControlAction(FastForward, state, opts)
	assert.Equal(t, []Command{SeekTo(40 * time.Second)}, commands)

	commands, _ = HandleControlAction(Rewind, state, opts)
	assert.Equal(t, []Command{SeekTo(25 * time.Second)}, commands)
}

func TestUnknownActionDoesNothing(t *testing.T) {
	state := State{IsPlaying: true, CurrentPosition: time.Second}
	commands, next := HandleControlAction(ControlAction(42), state, DefaultOptions())

	assert.Empty(t, commands)
	assert.Equal(t, state, next)
}

func TestPausedTelemetry(t *testing.T) {
	next := HandleTelemetryEvent(Paused(0.42, 0.60), State{IsPlaying: true})

	assert.Equal(t, 0.42, next.PlayProgress)
	assert.Equal(t, 0.60, next.BufferProgress)
	assert.False(t, next.IsPlaying)
}

func TestPausedTelemetryIsClamped(t *testing.T) {
	next := HandleTelemetryEvent(Paused(-0.5, 1.7), State{})

	assert.Equal(t, 0.0, next.PlayProgress)
	assert.Equal(t, 1.0, next.BufferProgress)
}

func TestPlayingTelemetryIsIdempotent(t *testing.T) {
	state := State{IsPlaying: true, PlayProgress: 0.3, BufferProgress: 0.5, CurrentPosition: 9 * time.Second}

	next := HandleTelemetryEvent(Playing(), state)
	next = HandleTelemetryEvent(Playing(), next)

	assert.Equal(t, state, next)
}

func TestEndedTelemetry(t *testing.T) {
	next := HandleTelemetryEvent(Ended(), State{IsPlaying: true, PlayProgress: 0.98})

	assert.Equal(t, 1.0, next.PlayProgress)
	assert.False(t, next.IsPlaying)
	assert.True(t, next.Ended())
}

func TestIdleTelemetryResetsProgress(t *testing.T) {
	state := State{
		Title:                 "Red frog",
		IsPlaying:             true,
		PlayProgress:          0.5,
		BufferProgress:        0.7,
		CurrentPosition:       10 * time.Second,
		Duration:              20 * time.Second,
		ControlOverlayVisible: true,
	}

	next := HandleTelemetryEvent(Idle(), state)

	assert.Equal(t, State{Title: "Red frog", ControlOverlayVisible: true}, next)
}

func TestProgressTelemetry(t *testing.T) {
	t.Run("known duration", func(t *testing.T) {
		next := HandleTelemetryEvent(Progress(15*time.Second, 60*time.Second, 30*time.Second), State{IsPlaying: true})
		assert.Equal(t, 15*time.Second, next.CurrentPosition)
		assert.Equal(t, 60*time.Second, next.Duration)
		assert.Equal(t, 0.25, next.PlayProgress)
		assert.Equal(t, 0.5, next.BufferProgress)
		assert.True(t, next.IsPlaying)
	})

	t.Run("unknown duration keeps fractions", func(t *testing.T) {
		state := State{PlayProgress: 0.1, BufferProgress: 0.2}
		next := HandleTelemetryEvent(Progress(3*time.Second, 0, 0), state)
		assert.Equal(t, 3*time.Second, next.CurrentPosition)
		assert.Equal(t, 0.1, next.PlayProgress)
		assert.Equal(t, 0.2, next.BufferProgress)
	})

	t.Run("negative position", func(t *testing.T) {
		next := HandleTelemetryEvent(Progress(-time.Second, 10*time.Second, 0), State{})
		assert.Equal(t, time.Duration(0), next.CurrentPosition)
		assert.Equal(t, 0.0, next.PlayProgress)
	})
}

func TestToggleOverlayVisibility(t *testing.T) {
	state := State{IsPlaying: true, CurrentPosition: 4 * time.Second}

	shown := ToggleOverlayVisibility(state)
	assert.True(t, shown.ControlOverlayVisible)
	assert.Equal(t, state.IsPlaying, shown.IsPlaying)
	assert.Equal(t, state.CurrentPosition, shown.CurrentPosition)

	hidden := ToggleOverlayVisibility(shown)
	assert.Equal(t, state, hidden)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "Play", Play().String())
	assert.Equal(t, "Pause", Pause().String())
	assert.Equal(t, "SeekTo(1m45s)", SeekTo(105*time.Second).String())
	assert.Equal(t, "Rewind", Rewind.String())
}
