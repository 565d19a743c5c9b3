package main

import "time"

// VideoRef identifies one logical video across the pipeline.
type VideoRef struct {
	RawURL  string `json:"url"`
	VideoID string `json:"video_id"`
}

// FormatInfo is one downloadable stream descriptor shown in the preview.
type FormatInfo struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	HasAudio   bool    `json:"has_audio"`
}

// VideoMeta is the preview snapshot returned by /api/info. The light resolver
// leaves Duration and ViewCount zero.
type VideoMeta struct {
	Title          string       `json:"title"`
	Thumbnail      string       `json:"thumbnail"`
	Duration       float64      `json:"duration,omitempty"`
	DurationString string       `json:"duration_string,omitempty"`
	Channel        string       `json:"channel"`
	ViewCount      int64        `json:"view_count,omitempty"`
	Formats        []FormatInfo `json:"formats"`
}

type InfoRequest struct {
	URL string `json:"url"`
}

type DownloadRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

// QualityTier is the target vertical resolution ceiling for a download.
type QualityTier int

const (
	Quality1080 QualityTier = 1080
	Quality1440 QualityTier = 1440
	Quality2160 QualityTier = 2160
)

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// DownloadJob holds one download request through its lifetime. A job moves
// Pending -> Running -> Succeeded|Failed exactly once.
type DownloadJob struct {
	ID           string      `json:"id"`
	URL          string      `json:"url"`
	VideoID      string      `json:"video_id"`
	Quality      QualityTier `json:"quality"`
	Status       JobStatus   `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	StartedAt    time.Time   `json:"started_at,omitempty"`
	CompletedAt  time.Time   `json:"completed_at,omitempty"`
	Progress     int         `json:"progress"`
	Backend      string      `json:"backend,omitempty"`
	ArtifactPath string      `json:"artifact_path,omitempty"`
	Filename     string      `json:"filename,omitempty"`
	DownloadURL  string      `json:"download_url,omitempty"`
	Error        string      `json:"error,omitempty"`

	// failure keeps the typed error for the handler waiting on the job.
	failure error
}

type HealthStatus struct {
	Status        string `json:"status"`
	ExecMode      string `json:"exec_mode"`
	ActiveJobs    int64  `json:"active_jobs"`
	QueuedJobs    int64  `json:"queued_jobs"`
	CompletedJobs int64  `json:"completed_jobs"`
	FailedJobs    int64  `json:"failed_jobs"`
	Workers       int    `json:"workers"`
	Uptime        string `json:"uptime"`
}
