package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spezifisch/stvp/logger"
	"github.com/stretchr/testify/assert"
)

func noEviction(string) string { return "" }

func TestNewCache(t *testing.T) {
	logger := logger.Logger{}

	t.Run("basic string cache creation", func(t *testing.T) {
		zero := "empty"
		c := NewCache(
			zero,
			func(ctx context.Context, k string) (string, error) { return zero, nil },
			func(k, v string) {},
			noEviction,
			&logger,
		)
		defer c.Close()
		if c.zero != zero {
			t.Errorf("expected %q, got %q", zero, c.zero)
		}
		if c.cache == nil || len(c.cache) != 0 {
			t.Errorf("expected non-nil, empty map; got %#v", c.cache)
		}
		if c.pipeline == nil {
			t.Errorf("expected non-nil chan; got %#v", c.pipeline)
		}
	})

	t.Run("different data type cache creation", func(t *testing.T) {
		zero := -1
		c := NewCache(
			zero,
			func(ctx context.Context, k string) (int, error) { return zero, nil },
			func(k string, v int) {},
			noEviction,
			&logger,
		)
		defer c.Close()
		if c.zero != zero {
			t.Errorf("expected %d, got %d", zero, c.zero)
		}
	})
}

func TestGet(t *testing.T) {
	logger := logger.Logger{}
	zero := "zero"
	items := map[string]string{"a": "1", "b": "2", "c": "3"}
	fetched := make(chan string, 1)
	c := NewCache(
		zero,
		func(ctx context.Context, k string) (string, error) {
			return items[k], nil
		},
		func(k, v string) { fetched <- k },
		noEviction,
		&logger,
	)
	defer c.Close()

	t.Run("empty cache get returns zero", func(t *testing.T) {
		got, ok := c.Lookup("a")
		assert.Equal(t, zero, got)
		assert.False(t, ok)
	})

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("fetch did not complete")
	}

	t.Run("non-empty cache get returns value", func(t *testing.T) {
		got, ok := c.Lookup("a")
		assert.Equal(t, "1", got)
		assert.True(t, ok)
	})
}

func TestCallback(t *testing.T) {
	logger := logger.Logger{}
	done := make(chan [2]string, 1)
	c := NewCache(
		"zero",
		func(ctx context.Context, k string) (string, error) {
			return "1", nil
		},
		func(k, v string) { done <- [2]string{k, v} },
		noEviction,
		&logger,
	)
	defer c.Close()

	c.Get("a")
	select {
	case got := <-done:
		assert.Equal(t, [2]string{"a", "1"}, got)
	case <-time.After(time.Second):
		t.Fatal("callback was not called")
	}
}

func TestConcurrentMissesFetchOnce(t *testing.T) {
	logger := logger.Logger{}
	var fetches atomic.Int32
	release := make(chan struct{})
	done := make(chan struct{})
	c := NewCache(
		"",
		func(ctx context.Context, k string) (string, error) {
			fetches.Add(1)
			<-release
			return "title", nil
		},
		func(k, v string) { close(done) },
		noEviction,
		&logger,
	)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get("frog.mp4")
		}()
	}
	wg.Wait()
	close(release)
	<-done

	assert.Equal(t, int32(1), fetches.Load())
}

func TestFailedFetchIsRetried(t *testing.T) {
	logger := logger.Logger{}
	var calls atomic.Int32
	attempted := make(chan struct{}, 2)
	c := NewCache(
		"",
		func(ctx context.Context, k string) (string, error) {
			defer func() { attempted <- struct{}{} }()
			if calls.Add(1) == 1 {
				return "", errors.New("ffprobe missing")
			}
			return "title", nil
		},
		func(k, v string) {},
		noEviction,
		&logger,
	)
	defer c.Close()
	c.SetRetryDelay(10 * time.Millisecond)

	c.Get("a")
	<-attempted
	// pending is cleared before the fetcher's deferred send returns
	assert.Eventually(t, func() bool {
		c.Get("a")
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestFailedFetchIsNotRetriedRightAway(t *testing.T) {
	logger := logger.Logger{}
	var calls atomic.Int32
	attempted := make(chan struct{}, 1)
	c := NewCache(
		"",
		func(ctx context.Context, k string) (string, error) {
			calls.Add(1)
			attempted <- struct{}{}
			return "", errors.New("ffprobe missing")
		},
		func(k, v string) {},
		noEviction,
		&logger,
	)
	defer c.Close()

	c.Get("a")
	<-attempted
	assert.Never(t, func() bool {
		_, ok := c.Lookup("a")
		return ok || calls.Load() > 1
	}, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPeekDoesNotFetch(t *testing.T) {
	logger := logger.Logger{}
	var calls atomic.Int32
	fetched := make(chan string, 1)
	c := NewCache(
		"zero",
		func(ctx context.Context, k string) (string, error) {
			calls.Add(1)
			return "v" + k, nil
		},
		func(k, v string) { fetched <- k },
		noEviction,
		&logger,
	)
	defer c.Close()

	got, ok := c.Peek("a")
	assert.False(t, ok)
	assert.Equal(t, "zero", got)
	assert.Equal(t, int32(0), calls.Load())

	c.Get("a")
	<-fetched
	got, ok = c.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, "va", got)
}

func TestClose(t *testing.T) {
	logger := logger.Logger{}
	cancelled := make(chan struct{})
	c := NewCache(
		"zero",
		func(ctx context.Context, k string) (string, error) {
			<-ctx.Done()
			close(cancelled)
			return "", ctx.Err()
		},
		func(k, v string) {
			t.Error("callback called after close")
		},
		noEviction,
		&logger,
	)

	c.Get("a")
	c.Close()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch was not cancelled")
	}

	assert.Equal(t, "zero", c.Get("a"))
	assert.Empty(t, c.cache)
	// closing twice is fine
	c.Close()
}

func TestInvalidate(t *testing.T) {
	logger := logger.Logger{}
	lru := NewLRU(1)
	fetched := make(chan string, 2)
	c := NewCache(
		"zero",
		func(ctx context.Context, k string) (string, error) {
			return "v" + k, nil
		},
		func(k, v string) { fetched <- k },
		lru.Touch,
		&logger,
	)
	defer c.Close()

	c.Get("a")
	<-fetched
	assert.Equal(t, "va", c.Get("a"))

	c.Get("b")
	<-fetched
	assert.Equal(t, "vb", c.Get("b"))

	// "a" was pushed out by "b"
	got, ok := c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, "zero", got)
}
