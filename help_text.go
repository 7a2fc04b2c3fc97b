package main

import (
	"fmt"
	"time"
)

// playback keys; the skip intervals come from the config
const helpPlaybackFormat = `
p/SPACE play/pause, replay when ended
,/LEFT  rewind %ds
./RIGHT fast-forward %ds
o/ENTER show/hide controls
-/=     volume down/volume up
</>     previous/next video
`

const helpPagePlayer = `
click   show/hide controls
        on the video area
buttons rewind, play/pause,
        fast-forward
`

const helpPageVideos = `
ENTER   play selected video
`

const helpPageLog = `
newest messages first
`

func helpPlayback(skipBackward, skipForward time.Duration) string {
	return fmt.Sprintf(helpPlaybackFormat, int(skipBackward.Seconds()), int(skipForward.Seconds()))
}

// helpForPage returns the title and text of the page specific help column.
func helpForPage(page string) (title string, text string) {
	switch page {
	case PagePlayer:
		return "Player", helpPagePlayer
	case PageVideos:
		return "Videos", helpPageVideos
	case PageLog:
		return "Log", helpPageLog
	}
	return "", ""
}
