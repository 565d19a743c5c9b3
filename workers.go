package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
)

func startWorker(workerID int) {
	log.Printf("Worker %d started.", workerID)
	for job := range jobQueue {
		processJob(job, workerID)
	}
}

func processJob(job *DownloadJob, workerID int) {
	atomic.AddInt64(&activeJobs, 1)
	atomic.AddInt64(&queuedJobs, -1)

	log.Printf("Worker %d: job %s (%s, %dp)", workerID, job.ID, job.VideoID, job.Quality)
	setJobRunning(job)

	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		finishJob(job, fmt.Errorf("creating downloads directory: %w", err))
		return
	}

	filename := newArtifactName()
	outputPath := filepath.Join(downloadsDir, filename)

	ref := VideoRef{RawURL: job.URL, VideoID: job.VideoID}
	var err error
	switch resolveExecMode() {
	case ExecModeRemote:
		err = runRemoteDownload(job, ref, outputPath)
	default:
		err = runLocalDownload(ctx, ref, BuildFormatPreference(job.Quality), outputPath, func(p int) {
			setJobProgress(job, p)
		})
	}
	if err != nil {
		finishJob(job, err)
		return
	}

	jobStore.Lock()
	job.ArtifactPath = outputPath
	job.Filename = filename
	job.DownloadURL = "/api/download/" + filename
	jobStore.Unlock()
	finishJob(job, nil)
}

// resolveExecMode picks the execution model: forced by configuration, or, in
// auto mode, local unless the tool is missing from PATH.
func resolveExecMode() string {
	switch execMode {
	case ExecModeLocal, ExecModeRemote:
		return execMode
	}
	if _, err := exec.LookPath(ytdlpBin); err != nil {
		return ExecModeRemote
	}
	return ExecModeLocal
}

// runRemoteDownload resolves a media URL through the fallback driver and
// stages it locally so serving and retention work the same as the local model.
func runRemoteDownload(job *DownloadJob, ref VideoRef, outputPath string) error {
	res, err := ResolveViaBackends(ref, job.Quality)
	if err != nil {
		return err
	}
	setJobBackend(job, res.Backend)
	return stageRemoteMedia(res.MediaURL, outputPath)
}

func stageRemoteMedia(mediaURL, outputPath string) error {
	reqCtx, cancelReq := context.WithTimeout(ctx, StagingTimeout)
	defer cancelReq()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("building staging request: %w", err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetching media: status %d", resp.StatusCode)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating artifact: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		// Never leave a partial artifact where the serving layer could find it.
		_ = os.Remove(outputPath)
		return fmt.Errorf("staging media: %w", err)
	}
	return f.Close()
}
