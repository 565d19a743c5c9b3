package main

import (
	"regexp"
	"strings"
)

// Accepted URL shapes, tried in priority order; first match wins. Each pattern
// captures the 11-char id and requires a non-id character (or end of string)
// right after it, so a 12-char candidate is rejected rather than truncated.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[./])youtube\.com/watch\?(?:[^#\s]*&)?v=([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:^|[./])youtu\.be/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:^|[./])youtube\.com/shorts/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:^|[./])youtube\.com/embed/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:^|[./])youtube\.com/(?:v|live)/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
}

var videoIDCharset = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ClassifyURL validates a raw input and extracts the canonical video id. Pure
// function, no network access.
func ClassifyURL(raw string) (VideoRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return VideoRef{}, ErrInvalidURL
	}
	for _, p := range videoIDPatterns {
		m := p.FindStringSubmatch(s)
		if len(m) < 2 {
			continue
		}
		if !videoIDCharset.MatchString(m[1]) {
			continue
		}
		return VideoRef{RawURL: s, VideoID: m[1]}, nil
	}
	return VideoRef{}, ErrInvalidURL
}
