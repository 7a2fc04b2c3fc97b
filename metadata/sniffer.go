// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/h2non/filetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// headerSize is what the magic-number matchers look at
const headerSize = 261

var ErrNotMedia = errors.New("source is not audio or video")

// Sniffer checks the first bytes of a media source before it is handed to
// the player.
type Sniffer struct {
	client *http.Client
}

func NewSniffer(retryMax int) *Sniffer {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.Logger = nil

	return &Sniffer{client: retryClient.StandardClient()}
}

// Sniff returns the detected MIME type of source. An empty type with a nil
// error means the kind is unknown (HLS playlists, raw streams), which is
// left to the player to decide. ErrNotMedia is returned for known kinds that
// are neither video nor audio.
func (s *Sniffer) Sniff(ctx context.Context, source string) (string, error) {
	head, err := s.readHead(ctx, source)
	if err != nil {
		return "", err
	}

	kind, err := filetype.Match(head)
	if err != nil {
		return "", errors.Wrap(err, "match")
	}
	if kind == filetype.Unknown {
		return "", nil
	}

	mime := fmt.Sprintf("%s/%s", kind.MIME.Type, kind.MIME.Subtype)
	if kind.MIME.Type != "video" && kind.MIME.Type != "audio" {
		return mime, errors.Wrap(ErrNotMedia, mime)
	}
	return mime, nil
}

func (s *Sniffer) readHead(ctx context.Context, source string) ([]byte, error) {
	var r io.ReadCloser

	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, errors.Wrap(err, "request")
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", headerSize-1))

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "get")
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			resp.Body.Close()
			return nil, errors.Errorf("get %s: status %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		if err == nil && u.Scheme == "file" {
			source = u.Path
		}
		f, err := os.Open(source)
		if err != nil {
			return nil, errors.Wrap(err, "open")
		}
		r = f
	}
	defer r.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrap(err, "read")
	}
	return head[:n], nil
}
