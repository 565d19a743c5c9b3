package main

import (
	"log"
	"net/http"
	"os"
)

func main() {
	loadConfig()
	initRedis()

	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		log.Fatalf("creating downloads directory %q: %v", downloadsDir, err)
	}

	jobQueue = make(chan *DownloadJob, JobQueueCapacity)
	for i := 0; i < WorkerPoolSize; i++ {
		go startWorker(i)
	}
	go startJanitor()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/info", rateLimitMiddleware(handleInfo))
	mux.HandleFunc("/api/download", rateLimitMiddleware(handleDownload))
	mux.HandleFunc("/api/download/", rateLimitMiddleware(handleServeArtifact))
	mux.HandleFunc("/api/jobs/", rateLimitMiddleware(handleJobStatus))
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/metrics", handleMetrics)

	setupGracefulShutdown()

	log.Printf("🚀 Server running on http://localhost:%s (%d workers, exec mode %s, meta mode %s)",
		port, WorkerPoolSize, resolveExecMode(), metaMode)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
