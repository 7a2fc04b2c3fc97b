// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import "time"

func durationToMinAndSec(d time.Duration) (int, int) {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return seconds / 60, seconds % 60
}
