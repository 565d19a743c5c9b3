package main

import "errors"

var (
	// ErrInvalidURL indicates the input is not a recognized YouTube URL.
	ErrInvalidURL = errors.New("invalid video URL")
	// ErrMetadataUnavailable indicates the preview info could not be fetched.
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrUpstreamBlocked indicates upstream bot detection or rate limiting;
	// retryable later, distinct from a generic failure.
	ErrUpstreamBlocked = errors.New("upstream blocked the request")
	// ErrAllBackendsExhausted indicates every fallback backend failed.
	ErrAllBackendsExhausted = errors.New("all backends exhausted")
	// ErrToolNotInstalled indicates the yt-dlp binary is missing.
	ErrToolNotInstalled = errors.New("yt-dlp not installed")
	// ErrArtifactMissing indicates the requested file expired or never existed.
	ErrArtifactMissing = errors.New("artifact missing")
)
