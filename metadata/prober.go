// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package metadata

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Prober reads container metadata with ffprobe.
type Prober struct {
	ffprobe string
}

func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobe: ffprobePath}
}

type ffprobeOutput struct {
	Format struct {
		Filename string            `json:"filename"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Title returns the container title tag of source, or an empty string if
// the container has none.
func (p *Prober) Title(ctx context.Context, source string) (string, error) {
	cmd := exec.CommandContext(ctx, p.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		source,
	)

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrapf(err, "ffprobe %s", source)
	}

	return parseTitle(out)
}

func parseTitle(data []byte) (string, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(data, &probed); err != nil {
		return "", errors.Wrap(err, "decode ffprobe output")
	}

	// tag case depends on the container (mp4 "title", mkv "TITLE")
	for k, v := range probed.Format.Tags {
		if strings.EqualFold(k, "title") {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}
