package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"sort"
	"strings"
)

type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	FPS            float64 `json:"fps"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
}

type ytdlpInfo struct {
	Title          string        `json:"title"`
	Thumbnail      string        `json:"thumbnail"`
	Duration       float64       `json:"duration"`
	DurationString string        `json:"duration_string"`
	Channel        string        `json:"channel"`
	ViewCount      int64         `json:"view_count"`
	Formats        []ytdlpFormat `json:"formats"`
}

// ResolveMetadata fetches the preview snapshot using the configured strategy.
func ResolveMetadata(ref VideoRef) (*VideoMeta, error) {
	if metaMode == MetaModeLight {
		return resolveMetadataLight(ref)
	}
	return resolveMetadataFull(ref)
}

// resolveMetadataFull asks yt-dlp for the complete metadata dump, including
// the stream descriptor list shown as quality options.
func resolveMetadataFull(ref VideoRef) (*VideoMeta, error) {
	runCtx, cancelRun := context.WithTimeout(ctx, MetadataTimeout)
	defer cancelRun()

	args := []string{
		"--dump-json",
		"--no-playlist",
		"--no-check-certificates",
		"--user-agent", BrowserUserAgent,
		"--referer", WatchPageReferer,
		ref.RawURL,
	}
	cmd := exec.CommandContext(runCtx, ytdlpBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, classifyYtdlpError(err, stderr.String())
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("%w: parsing yt-dlp output: %v", ErrMetadataUnavailable, err)
	}

	return &VideoMeta{
		Title:          info.Title,
		Thumbnail:      info.Thumbnail,
		Duration:       info.Duration,
		DurationString: info.DurationString,
		Channel:        info.Channel,
		ViewCount:      info.ViewCount,
		Formats:        previewFormats(info.Formats),
	}, nil
}

// previewFormats keeps video streams of at least 720p, highest resolution
// first, one entry per height (first seen wins, which is the highest-bitrate
// variant after the stable sort), truncated to the top 5.
func previewFormats(raw []ytdlpFormat) []FormatInfo {
	var candidates []ytdlpFormat
	for _, f := range raw {
		if f.VCodec == "none" || f.VCodec == "" || f.Height < 720 {
			continue
		}
		candidates = append(candidates, f)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Height > candidates[j].Height
	})

	out := make([]FormatInfo, 0, 5)
	seen := make(map[int]bool)
	for _, f := range candidates {
		if seen[f.Height] {
			continue
		}
		seen[f.Height] = true
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		out = append(out, FormatInfo{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: fmt.Sprintf("%dx%d", f.Width, f.Height),
			Height:     f.Height,
			FPS:        f.FPS,
			Filesize:   size,
			VCodec:     f.VCodec,
			ACodec:     f.ACodec,
			HasAudio:   f.ACodec != "none" && f.ACodec != "",
		})
		if len(out) == 5 {
			break
		}
	}
	return out
}

// classifyYtdlpError maps a subprocess failure onto the error taxonomy. Raw
// stderr is attached for server-side logs, never echoed to clients verbatim.
func classifyYtdlpError(err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: install yt-dlp and make sure %q is on PATH", ErrToolNotInstalled, ytdlpBin)
	}
	if strings.Contains(stderr, "Sign in to confirm") {
		return fmt.Errorf("%w: %s", ErrUpstreamBlocked, firstLine(stderr))
	}
	if strings.Contains(stderr, "Video unavailable") {
		return fmt.Errorf("%w: video unavailable", ErrMetadataUnavailable)
	}
	return fmt.Errorf("%w: %v: %s", ErrMetadataUnavailable, err, firstLine(stderr))
}

// resolveMetadataLight uses the public oEmbed endpoint: title and channel come
// back directly, the thumbnail is built from the video id, and duration and
// view count stay unknown.
func resolveMetadataLight(ref VideoRef) (*VideoMeta, error) {
	u, err := url.Parse(oembedEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad oembed endpoint: %v", ErrMetadataUnavailable, err)
	}
	q := u.Query()
	q.Set("url", ref.RawURL)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	reqCtx, cancelReq := context.WithTimeout(ctx, OEmbedTimeout)
	defer cancelReq()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: oembed status %d", ErrUpstreamBlocked, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: oembed status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding oembed response: %v", ErrMetadataUnavailable, err)
	}

	return &VideoMeta{
		Title:     payload.Title,
		Thumbnail: fmt.Sprintf(ThumbnailTemplate, ref.VideoID),
		Channel:   payload.AuthorName,
		Formats:   []FormatInfo{},
	}, nil
}
