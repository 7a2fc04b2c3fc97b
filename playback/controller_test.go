package playback

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spezifisch/stvp/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	commands []Command
	reject   func(Command) error
}

func (r *recordingSink) Execute(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject != nil {
		if err := r.reject(cmd); err != nil {
			return err
		}
	}
	r.commands = append(r.commands, cmd)
	return nil
}

func (r *recordingSink) sent() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

func newTestController(sink CommandSink) *Controller {
	return NewController(sink, DefaultOptions(), &logger.Logger{})
}

func TestControllerDispatchesCommandsInOrder(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.HandleTelemetryEvent(Progress(120*time.Second, 120*time.Second, 120*time.Second))
	c.HandleTelemetryEvent(Ended())
	require.NoError(t, c.HandleControlAction(PlayToggle))

	assert.Equal(t, []Command{SeekTo(0), Play()}, sink.sent())
	assert.True(t, c.State().IsPlaying)
	assert.False(t, c.State().ControlOverlayVisible)
}

func TestControllerRollsBackRejectedAction(t *testing.T) {
	sink := &recordingSink{
		reject: func(cmd Command) error {
			if cmd.Type == CommandPlay {
				return errors.New("no file loaded")
			}
			return nil
		},
	}
	c := newTestController(sink)
	c.HandleTelemetryEvent(Ended())
	c.ToggleOverlayVisibility()
	before := c.State()

	notified := 0
	c.Subscribe(func(State) { notified++ })

	err := c.HandleControlAction(PlayToggle)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandRejected)
	assert.Contains(t, err.Error(), "no file loaded")
	assert.Equal(t, before, c.State())
	assert.Equal(t, 0, notified)
	// the seek went out before the play was rejected
	assert.Equal(t, []Command{SeekTo(0)}, sink.sent())
}

func TestControllerRejectionKeepsSinkError(t *testing.T) {
	errIdle := errors.New("idle")
	sink := &recordingSink{
		reject: func(cmd Command) error { return errIdle },
	}
	c := newTestController(sink)

	err := c.HandleControlAction(Rewind)

	assert.ErrorIs(t, err, ErrCommandRejected)
	assert.ErrorIs(t, err, errIdle)
	var rejected *CommandRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, Rewind, rejected.Action)
	assert.Equal(t, SeekTo(0), rejected.Command)
}

func TestControllerStopsAtFirstRejection(t *testing.T) {
	sink := &recordingSink{
		reject: func(cmd Command) error { return errors.New("nope") },
	}
	c := newTestController(sink)
	c.HandleTelemetryEvent(Ended())

	assert.Error(t, c.HandleControlAction(PlayToggle))
	assert.Empty(t, sink.sent())
}

func TestControllerNotifiesSubscribers(t *testing.T) {
	c := newTestController(&recordingSink{})

	var states []State
	unsubscribe := c.Subscribe(func(s State) { states = append(states, s) })

	c.SetTitle("Red frog on a log")
	c.HandleTelemetryEvent(Paused(0.42, 0.60))
	c.ToggleOverlayVisibility()
	require.NoError(t, c.HandleControlAction(FastForward))

	require.Len(t, states, 4)
	assert.Equal(t, "Red frog on a log", states[0].Title)
	assert.Equal(t, 0.42, states[1].PlayProgress)
	assert.True(t, states[2].ControlOverlayVisible)
	assert.Equal(t, 5*time.Second, states[3].CurrentPosition)

	unsubscribe()
	c.ToggleOverlayVisibility()
	assert.Len(t, states, 4)
}

func TestControllerOverlayToggleSendsNoCommand(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	for i := 0; i < 5; i++ {
		c.ToggleOverlayVisibility()
	}

	assert.Empty(t, sink.sent())
	assert.True(t, c.State().ControlOverlayVisible)
}

func TestControllerReset(t *testing.T) {
	c := newTestController(&recordingSink{})
	c.SetTitle("old")
	c.HandleTelemetryEvent(Progress(10*time.Second, 20*time.Second, 15*time.Second))

	c.Reset()

	assert.Equal(t, State{}, c.State())
}

func TestControllerWithoutSink(t *testing.T) {
	c := newTestController(nil)

	assert.NoError(t, c.HandleControlAction(PlayToggle))
	assert.True(t, c.State().IsPlaying)
}

func TestControllerConcurrentHandlers(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.HandleControlAction(FastForward)
		}()
		go func() {
			defer wg.Done()
			c.HandleTelemetryEvent(Playing())
		}()
	}
	wg.Wait()

	assert.Len(t, sink.sent(), 50)
	assert.Equal(t, 250*time.Second, c.State().CurrentPosition)
}

func TestControllerNeverDeliversStaleState(t *testing.T) {
	c := newTestController(&recordingSink{})

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var last State
	first := true
	c.Subscribe(func(s State) {
		mu.Lock()
		hold := first
		first = false
		mu.Unlock()
		if hold {
			close(entered)
			<-release
		}
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.SetTitle("old")
	}()
	<-entered
	go func() {
		defer wg.Done()
		c.HandleTelemetryEvent(Ended())
	}()
	// the end is applied while the title notification is still running
	require.Eventually(t, func() bool { return c.State().Ended() }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, c.State(), last)
}

func TestControllerSkipsOvertakenState(t *testing.T) {
	c := newTestController(&recordingSink{})
	var states []State
	c.Subscribe(func(s State) { states = append(states, s) })

	c.notify(State{Title: "new"}, 2)
	c.notify(State{Title: "old"}, 1)

	require.Len(t, states, 1)
	assert.Equal(t, "new", states[0].Title)
}
