package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidURL, http.StatusBadRequest},
		{ErrUpstreamBlocked, http.StatusForbidden},
		{ErrAllBackendsExhausted, http.StatusInternalServerError},
		{ErrToolNotInstalled, http.StatusInternalServerError},
		{ErrArtifactMissing, http.StatusNotFound},
		{ErrMetadataUnavailable, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrUpstreamBlocked), http.StatusForbidden},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandleInfoRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing url", http.MethodPost, `{"url":""}`, http.StatusBadRequest},
		{"invalid url", http.MethodPost, `{"url":"https://vimeo.com/12345"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/info", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handleInfo(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleInfoLightStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Video Title","author_name":"A Channel"}`)
	}))
	defer srv.Close()

	savedEndpoint, savedMode := oembedEndpoint, metaMode
	oembedEndpoint, metaMode = srv.URL, MetaModeLight
	t.Cleanup(func() { oembedEndpoint, metaMode = savedEndpoint, savedMode })

	req := httptest.NewRequest(http.MethodPost, "/api/info",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	handleInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var meta VideoMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if meta.Title != "Video Title" || meta.Channel != "A Channel" {
		t.Errorf("meta = %+v", meta)
	}
}

func withJobQueue(t *testing.T, capacity int) {
	t.Helper()
	saved := jobQueue
	queue := make(chan *DownloadJob, capacity)
	jobQueue = queue
	t.Cleanup(func() {
		jobQueue = saved
		close(queue)
	})
}

// fakeWorker drains the queue and finishes each job with the given outcome,
// standing in for the real worker pool.
func fakeWorker(t *testing.T, outcome error) {
	t.Helper()
	queue := jobQueue
	go func() {
		for job := range queue {
			if outcome == nil {
				jobStore.Lock()
				job.Filename = "abc.mp4"
				job.DownloadURL = "/api/download/abc.mp4"
				jobStore.Unlock()
			}
			finishJob(job, outcome)
		}
	}()
}

func TestHandleDownloadQueueFull(t *testing.T) {
	withJobQueue(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	handleDownload(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleDownloadSuccess(t *testing.T) {
	withJobQueue(t, 1)
	fakeWorker(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ","quality":"1440"}`))
	rec := httptest.NewRecorder()
	handleDownload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success     bool   `json:"success"`
		Filename    string `json:"filename"`
		DownloadURL string `json:"downloadUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Filename != "abc.mp4" || resp.DownloadURL != "/api/download/abc.mp4" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleDownloadFailureMapsStatus(t *testing.T) {
	withJobQueue(t, 1)
	fakeWorker(t, ErrUpstreamBlocked)

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	handleDownload(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandleDownloadInvalidURL(t *testing.T) {
	withJobQueue(t, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"not a url"}`))
	rec := httptest.NewRecorder()
	handleDownload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleJobStatus(t *testing.T) {
	ref := VideoRef{RawURL: "https://youtu.be/dQw4w9WgXcQ", VideoID: "dQw4w9WgXcQ"}
	job := newDownloadJob(ref, Quality1080)
	t.Cleanup(func() { removeJob(job.ID) })
	setJobProgress(job, 37)

	rec := httptest.NewRecorder()
	handleJobStatus(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		ID       string    `json:"id"`
		Status   JobStatus `json:"status"`
		Progress int       `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != job.ID || resp.Status != StatusPending || resp.Progress != 37 {
		t.Errorf("response = %+v", resp)
	}

	rec = httptest.NewRecorder()
	handleJobStatus(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/no-such-job", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}
}

func TestHandleServeArtifactNotFound(t *testing.T) {
	withDownloadsDir(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download/"+newArtifactName(), nil)
	handleServeArtifact(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
