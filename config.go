package main

import (
	"os"
	"strings"
	"time"
)

// Centralized configuration values
const (
	DefaultPort         = "3000"
	DefaultDownloadsDir = "downloads"
	DefaultYtdlpBin     = "yt-dlp"

	// Worker Configuration
	WorkerPoolSize   = 4
	JobQueueCapacity = 64

	// Rate Limiting
	RequestsPerSecond = 20
	BurstSize         = 40

	// Redis Configuration
	DefaultRedisAddr = "localhost:6379"
	RedisPassword    = ""
	RedisDB          = 0
	JobExpiration    = 24 * time.Hour

	// External call bounds
	MetadataTimeout = 45 * time.Second
	OEmbedTimeout   = 10 * time.Second
	BackendTimeout  = 60 * time.Second
	DownloadTimeout = 15 * time.Minute
	StagingTimeout  = 10 * time.Minute

	// Artifact retention
	RetentionAge    = time.Hour
	CleanupInterval = 30 * time.Minute
	GraceDelay      = 5 * time.Second

	// Anti-blocking headers sent to upstream services
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (HTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	WatchPageReferer = "https://www.youtube.com/"

	// Thumbnail URL template keyed by video id (light metadata strategy)
	ThumbnailTemplate = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

// Execution model and metadata strategy selection.
const (
	ExecModeAuto   = "auto"
	ExecModeLocal  = "local"
	ExecModeRemote = "remote"

	MetaModeFull  = "full"
	MetaModeLight = "light"
)

// Runtime settings, overridable through the environment.
var (
	port           = DefaultPort
	downloadsDir   = DefaultDownloadsDir
	ytdlpBin       = DefaultYtdlpBin
	execMode       = ExecModeAuto
	metaMode       = MetaModeFull
	redisAddr      = DefaultRedisAddr
	oembedEndpoint = "https://www.youtube.com/oembed"
	graceDelay     = GraceDelay
)

func loadConfig() {
	port = envOr("PORT", DefaultPort)
	downloadsDir = envOr("DOWNLOADS_DIR", DefaultDownloadsDir)
	ytdlpBin = envOr("YTDLP_PATH", DefaultYtdlpBin)
	execMode = envOr("EXEC_MODE", ExecModeAuto)
	metaMode = envOr("META_MODE", MetaModeFull)
	redisAddr = envOr("REDIS_ADDR", DefaultRedisAddr)
	if v := os.Getenv("FALLBACK_BACKENDS"); v != "" {
		if parsed := parseBackendList(v); len(parsed) > 0 {
			fallbackBackends = parsed
		}
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
