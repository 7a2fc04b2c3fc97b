// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"sync"
	"time"

	"github.com/spezifisch/stvp/logger"
)

// Cache fetches assets and holds a copy, returning them on request.
// A Cache is composed of four mechanisms:
//
// 1. a zero object
// 2. a function for fetching assets
// 3. a function for invalidating assets
// 4. a call-back function for when an asset is fetched
//
// When an asset is requested, Cache returns the asset if it is cached.
// Otherwise, it returns the zero object, and queues up a fetch for the object
// in the background. When the fetch is complete, the callback function is
// called, allowing the caller to get the real asset. Each key is fetched at
// most once at a time; a failed fetch is logged and not requested again
// until the retry delay has passed.
//
// stvp uses it for video titles, keyed by source URL.
const defaultRetryDelay = time.Minute

type Cache[T any] struct {
	zero T

	mu         sync.Mutex
	cache      map[string]T
	pending    map[string]struct{}
	failed     map[string]time.Time
	retryDelay time.Duration
	closed     bool
	pipeline   chan string
	cancel     context.CancelFunc
	cacheCheck func(string) string
}

// NewCache sets up a new cache, given
//
//   - a zeroValue, returned immediately on cache misses
//   - a fetcher, which can be a long-running function that loads assets.
//     fetcher should take a key ID and return an asset, or an error. The
//     context is cancelled when the Cache is closed.
//   - a fetchedItem call-back function, which will be called when a requested asset is available. It
//     will be called with the asset ID, and the loaded asset.
//   - a cacheCheck function which, when given a key, returns a key to remove from the
//     cache, or the empty string if nothing is to be removed.
//   - a logger, used for reporting errors returned by the fetching function
func NewCache[T any](
	zeroValue T,
	fetcher func(context.Context, string) (T, error),
	fetchedItem func(string, T),
	cacheCheck func(string) string,
	logger logger.LoggerInterface,
) *Cache[T] {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Cache[T]{
		zero:       zeroValue,
		cache:      make(map[string]T),
		pending:    make(map[string]struct{}),
		failed:     make(map[string]time.Time),
		retryDelay: defaultRetryDelay,
		pipeline:   make(chan string, 1000),
		cancel:     cancel,
		cacheCheck: cacheCheck,
	}

	go func() {
		for key := range c.pipeline {
			asset, err := fetcher(ctx, key)

			c.mu.Lock()
			delete(c.pending, key)
			if err != nil && !c.closed {
				c.failed[key] = time.Now()
			}
			if err != nil || c.closed {
				c.mu.Unlock()
				if err != nil && ctx.Err() == nil {
					logger.Printf("error fetching asset %s: %s", key, err)
				}
				continue
			}
			delete(c.failed, key)
			c.cache[key] = asset
			if remove := c.cacheCheck(key); remove != "" {
				delete(c.cache, remove)
			}
			c.mu.Unlock()

			fetchedItem(key, asset)
		}
	}()

	return c
}

// Get returns a cached asset, or the zero asset on a cache miss.
// On a cache miss, the requested asset is queued for fetching.
func (c *Cache[T]) Get(key string) T {
	v, _ := c.Lookup(key)
	return v
}

// SetRetryDelay sets how long a key whose fetch failed is left alone.
func (c *Cache[T]) SetRetryDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryDelay = d
}

// Peek returns a cached asset without queueing a fetch on a miss.
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache[key]; ok && !c.closed {
		return v, true
	}
	return c.zero, false
}

// Lookup is Get, also reporting whether the asset was cached.
func (c *Cache[T]) Lookup(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.zero, false
	}
	if v, ok := c.cache[key]; ok {
		// We're just touching something in the cache, not putting anything in it,
		// so we just call cacheCheck to refresh this key
		c.cacheCheck(key)
		return v, true
	}
	if failedAt, ok := c.failed[key]; ok {
		if time.Since(failedAt) < c.retryDelay {
			return c.zero, false
		}
		delete(c.failed, key)
	}
	if _, ok := c.pending[key]; !ok {
		select {
		case c.pipeline <- key:
			c.pending[key] = struct{}{}
		default:
			// pipeline full, the next Get retries
		}
	}
	return c.zero, false
}

// Close cancels running fetches, clears the cache and shuts down the
// fetching goroutine. Get keeps returning the zero asset afterwards.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.pipeline)
	for k := range c.cache {
		delete(c.cache, k)
	}
	for k := range c.failed {
		delete(c.failed, k)
	}
}
