package main

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func newDownloadJob(ref VideoRef, quality QualityTier) *DownloadJob {
	job := &DownloadJob{
		ID:        uuid.New().String(),
		URL:       ref.RawURL,
		VideoID:   ref.VideoID,
		Quality:   quality,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	jobStore.Lock()
	jobStore.jobs[job.ID] = job
	jobStore.Unlock()
	saveJobToRedis(job)
	return job
}

func lookupJob(jobID string) *DownloadJob {
	jobStore.RLock()
	job := jobStore.jobs[jobID]
	jobStore.RUnlock()
	return job
}

func removeJob(jobID string) {
	jobStore.Lock()
	delete(jobStore.jobs, jobID)
	jobStore.Unlock()
	deleteJobFromRedis(jobID)
}

func setJobRunning(job *DownloadJob) {
	jobStore.Lock()
	job.Status = StatusRunning
	job.StartedAt = time.Now()
	jobStore.Unlock()
	saveJobToRedis(job)
}

// setJobProgress keeps the reported percentage monotonic even though progress
// lines arrive from two streams.
func setJobProgress(job *DownloadJob, pct int) {
	jobStore.Lock()
	if pct > job.Progress {
		job.Progress = pct
	}
	jobStore.Unlock()
}

func setJobBackend(job *DownloadJob, backend string) {
	jobStore.Lock()
	job.Backend = backend
	jobStore.Unlock()
}

// finishJob moves a job to its terminal state exactly once, updates the
// counters and wakes any waiters. Later calls are no-ops.
func finishJob(job *DownloadJob, jobErr error) {
	jobStore.Lock()
	if job.Status == StatusSucceeded || job.Status == StatusFailed {
		jobStore.Unlock()
		return
	}
	started := !job.StartedAt.IsZero()
	job.CompletedAt = time.Now()
	if jobErr != nil {
		job.Status = StatusFailed
		job.Error = jobErr.Error()
		job.failure = jobErr
	} else {
		job.Status = StatusSucceeded
		job.Progress = 100
	}
	jobStore.Unlock()
	saveJobToRedis(job)

	if started {
		atomic.AddInt64(&activeJobs, -1)
	}
	if jobErr != nil {
		atomic.AddInt64(&failedJobs, 1)
		log.Printf("Job %s failed: %v", job.ID, jobErr)
	} else {
		atomic.AddInt64(&completedJobs, 1)
		log.Printf("Job %s completed: %s", job.ID, job.Filename)
	}
	notifyJobCompletion(job)
}

// pruneJobs drops job records older than the cutoff from the in-memory store.
// Their artifacts, if any remain, are the janitor's problem.
func pruneJobs(cutoff time.Time) {
	jobStore.Lock()
	for id, job := range jobStore.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(jobStore.jobs, id)
		}
	}
	jobStore.Unlock()
}
