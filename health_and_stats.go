package main

import (
	"net/http"
	"sync/atomic"
	"time"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	status := "healthy"
	if atomic.LoadInt64(&activeJobs) > WorkerPoolSize*2 {
		status = "overloaded"
	}
	health := HealthStatus{
		Status:        status,
		ExecMode:      resolveExecMode(),
		ActiveJobs:    atomic.LoadInt64(&activeJobs),
		QueuedJobs:    atomic.LoadInt64(&queuedJobs),
		CompletedJobs: atomic.LoadInt64(&completedJobs),
		FailedJobs:    atomic.LoadInt64(&failedJobs),
		Workers:       WorkerPoolSize,
		Uptime:        time.Since(serverStartTime).String(),
	}
	writeJSON(w, http.StatusOK, health)
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	jobStore.RLock()
	totalJobs := len(jobStore.jobs)
	jobStore.RUnlock()

	metrics := map[string]interface{}{
		"total_jobs":     totalJobs,
		"active_jobs":    atomic.LoadInt64(&activeJobs),
		"queued_jobs":    atomic.LoadInt64(&queuedJobs),
		"completed_jobs": atomic.LoadInt64(&completedJobs),
		"failed_jobs":    atomic.LoadInt64(&failedJobs),
		"workers":        WorkerPoolSize,
		"queue_capacity": JobQueueCapacity,
		"rate_limit":     RequestsPerSecond,
		"backends":       len(fallbackBackends),
		"uptime_seconds": time.Since(serverStartTime).Seconds(),
	}
	writeJSON(w, http.StatusOK, metrics)
}
