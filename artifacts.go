package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newArtifactName returns an unguessable artifact filename. Never derived
// from user-supplied text.
func newArtifactName() string {
	return uuid.New().String() + ".mp4"
}

// artifactNameRe guards retrieval against path injection: only names this
// server generated are servable.
var artifactNameRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp4$`)

var titleDenyRe = regexp.MustCompile(`[^A-Za-z0-9 _-]`)

const maxTitleLen = 100

// sanitizeTitle strips everything outside the allow-list and caps the length,
// falling back to "video" when nothing usable survives.
func sanitizeTitle(title string) string {
	s := titleDenyRe.ReplaceAllString(title, "")
	if len(s) > maxTitleLen {
		s = s[:maxTitleLen]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "video"
	}
	return s
}

// serveArtifact streams the file as an attachment named after the sanitized
// display title, then schedules the grace-delayed delete whether or not the
// transfer finished cleanly.
func serveArtifact(w http.ResponseWriter, r *http.Request, filename string) error {
	if !artifactNameRe.MatchString(filename) {
		return ErrArtifactMissing
	}
	path := filepath.Join(downloadsDir, filename)
	f, err := os.Open(path)
	if err != nil {
		return ErrArtifactMissing
	}
	defer f.Close()

	title := sanitizeTitle(r.URL.Query().Get("title"))
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+".mp4"))
	if fi, statErr := f.Stat(); statErr == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	}

	_, copyErr := io.Copy(w, f)
	scheduleArtifactDelete(path, graceDelay)
	if copyErr != nil {
		log.Printf("Streaming %s aborted: %v", filename, copyErr)
	}
	return nil
}

// scheduleArtifactDelete removes the file after a grace delay so a retrying
// client can reconnect. The delete is idempotent: a file already reclaimed by
// the janitor or a concurrent retrieval is not an error.
func scheduleArtifactDelete(path string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Removing artifact %s: %v", path, err)
		}
	})
}

// startJanitor sweeps the staging area on a fixed interval so storage stays
// bounded even when a client never retrieves its file.
func startJanitor() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweepArtifacts(time.Now())
			pruneJobs(time.Now().Add(-JobExpiration))
		case <-ctx.Done():
			return
		}
	}
}

// sweepArtifacts deletes staged files older than the retention threshold by
// mtime. A file vanishing between the listing and the delete attempt counts
// as already handled.
func sweepArtifacts(now time.Time) {
	entries, err := os.ReadDir(downloadsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Janitor: reading %s: %v", downloadsDir, err)
		}
		return
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= RetentionAge {
			continue
		}
		if err := os.Remove(filepath.Join(downloadsDir, e.Name())); err != nil && !os.IsNotExist(err) {
			log.Printf("Janitor: removing %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("🧹 Janitor removed %d expired artifact(s)", removed)
	}
}
