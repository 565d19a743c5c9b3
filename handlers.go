package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError translates the taxonomy into an HTTP status and a client-safe
// message. Anything unclassified becomes a generic 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return http.StatusBadRequest, "invalid YouTube URL"
	case errors.Is(err, ErrUpstreamBlocked):
		return http.StatusForbidden, "YouTube blocked the request (bot detection), please try again later"
	case errors.Is(err, ErrAllBackendsExhausted):
		return http.StatusInternalServerError, "all download servers are busy, please try again later"
	case errors.Is(err, ErrToolNotInstalled):
		return http.StatusInternalServerError, "yt-dlp is not installed; install it and make sure it is on PATH"
	case errors.Is(err, ErrArtifactMissing):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, ErrMetadataUnavailable):
		return http.StatusInternalServerError, "could not fetch video information"
	default:
		return http.StatusInternalServerError, "download failed, please try again"
	}
}

// POST /api/info
func handleInfo(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid request method")
		return
	}

	var req InfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing video URL")
		return
	}

	ref, err := ClassifyURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid YouTube URL")
		return
	}

	meta, err := ResolveMetadata(ref)
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// POST /api/download
//
// The response stays synchronous from the client's view: the job runs on the
// worker pool and the handler blocks on a completion waiter, so a slow spawn
// never blocks the accept loop.
func handleDownload(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid request method")
		return
	}

	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing video URL")
		return
	}
	ref, err := ClassifyURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid YouTube URL")
		return
	}

	job := newDownloadJob(ref, ParseQualityTier(req.Quality))
	atomic.AddInt64(&queuedJobs, 1)
	resultCh := registerJobWaiter(job.ID)

	select {
	case jobQueue <- job:
	default:
		unregisterJobWaiter(job.ID, resultCh)
		removeJob(job.ID)
		atomic.AddInt64(&queuedJobs, -1)
		writeError(w, http.StatusServiceUnavailable, "server busy, please try again later")
		return
	}

	select {
	case done := <-resultCh:
		if done.Status == StatusSucceeded {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":     true,
				"filename":    done.Filename,
				"downloadUrl": done.DownloadURL,
			})
			return
		}
		status, msg := statusForError(done.failure)
		writeError(w, status, msg)
	case <-r.Context().Done():
		// Client went away. The job finishes on its own and the janitor
		// reclaims the artifact if nobody ever fetches it.
	}
}

// GET /api/download/{filename}?title=
func handleServeArtifact(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid request method")
		return
	}
	filename := path.Base(r.URL.Path)
	if err := serveArtifact(w, r, filename); err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
	}
}

// GET /api/jobs/{id} reports a job's state, useful when the client lost the
// synchronous response mid-download.
func handleJobStatus(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid request method")
		return
	}

	jobID := path.Base(r.URL.Path)
	if jobID == "" || jobID == "jobs" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}

	job := lookupJob(jobID)
	if job == nil {
		if fromRedis, err := getJobFromRedis(jobID); err == nil && fromRedis != nil {
			job = fromRedis
		}
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	jobStore.RLock()
	resp := struct {
		ID          string    `json:"id"`
		Status      JobStatus `json:"status"`
		Progress    int       `json:"progress"`
		Filename    string    `json:"filename,omitempty"`
		DownloadURL string    `json:"download_url,omitempty"`
		Backend     string    `json:"backend,omitempty"`
		Error       string    `json:"error,omitempty"`
	}{
		ID:          job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		Filename:    job.Filename,
		DownloadURL: job.DownloadURL,
		Backend:     job.Backend,
		Error:       job.Error,
	}
	jobStore.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}
