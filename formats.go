package main

import (
	"fmt"
	"strings"
)

// FormatPreference is an ordered fallback chain of yt-dlp selection
// expressions, strictest first. The last entry is always unconstrained so a
// download degrades to some quality instead of failing outright.
type FormatPreference []string

// BuildFormatPreference returns the fallback chain for a resolution ceiling:
// mp4 video + m4a audio at the ceiling, then any codec pairing at the ceiling,
// then the best pre-combined stream at the ceiling, then best available.
func BuildFormatPreference(q QualityTier) FormatPreference {
	h := int(q)
	return FormatPreference{
		fmt.Sprintf("bestvideo[height<=%d][ext=mp4]+bestaudio[ext=m4a]", h),
		fmt.Sprintf("bestvideo[height<=%d]+bestaudio", h),
		fmt.Sprintf("best[height<=%d]", h),
		"best",
	}
}

// Expression joins the chain into the single selector string yt-dlp accepts.
func (p FormatPreference) Expression() string {
	return strings.Join(p, "/")
}

// ParseQualityTier maps the request's quality field onto a tier. Unknown or
// empty values fall back to 1080.
func ParseQualityTier(s string) QualityTier {
	switch strings.TrimSpace(s) {
	case "2160":
		return Quality2160
	case "1440":
		return Quality1440
	default:
		return Quality1080
	}
}
