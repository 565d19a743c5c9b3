package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func withBackends(t *testing.T, backends []backendDescriptor) {
	t.Helper()
	saved := fallbackBackends
	fallbackBackends = backends
	t.Cleanup(func() { fallbackBackends = saved })
}

func backendStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveViaBackendsFirstSuccessWins(t *testing.T) {
	var secondCalled int32

	failing := backendStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	working := backendStub(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req["videoQuality"] != "1080" {
			t.Errorf("videoQuality = %q, want %q", req["videoQuality"], "1080")
		}
		if req["filenameStyle"] != "basic" {
			t.Errorf("filenameStyle = %q, want %q", req["filenameStyle"], "basic")
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "tunnel", "url": "https://cdn.example/media.mp4"})
	})
	never := backendStub(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&secondCalled, 1)
		json.NewEncoder(w).Encode(map[string]string{"status": "tunnel", "url": "https://cdn.example/other.mp4"})
	})

	withBackends(t, []backendDescriptor{
		{Name: "a", Endpoint: failing.URL},
		{Name: "b", Endpoint: working.URL},
		{Name: "c", Endpoint: never.URL},
	})

	ref := VideoRef{RawURL: "https://youtu.be/dQw4w9WgXcQ", VideoID: "dQw4w9WgXcQ"}
	res, err := ResolveViaBackends(ref, Quality1080)
	if err != nil {
		t.Fatalf("ResolveViaBackends error: %v", err)
	}
	if res.Backend != "b" {
		t.Errorf("Backend = %q, want %q", res.Backend, "b")
	}
	if res.MediaURL != "https://cdn.example/media.mp4" {
		t.Errorf("MediaURL = %q", res.MediaURL)
	}
	if n := atomic.LoadInt32(&secondCalled); n != 0 {
		t.Errorf("backend after the first success was called %d time(s)", n)
	}
}

func TestResolveViaBackendsAllFail(t *testing.T) {
	down := backendStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	erroring := backendStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "error",
			"error":  map[string]string{"code": "error.api.fetch.fail"},
		})
	})
	withBackends(t, []backendDescriptor{
		{Name: "down", Endpoint: down.URL},
		{Name: "erroring", Endpoint: erroring.URL},
	})

	ref := VideoRef{RawURL: "https://youtu.be/dQw4w9WgXcQ", VideoID: "dQw4w9WgXcQ"}
	if _, err := ResolveViaBackends(ref, Quality1080); !errors.Is(err, ErrAllBackendsExhausted) {
		t.Errorf("error = %v, want ErrAllBackendsExhausted", err)
	}
}

func TestBackendResponseMediaURL(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"redirect", `{"status":"redirect","url":"https://a/x.mp4"}`, "https://a/x.mp4", true},
		{"stream", `{"status":"stream","url":"https://a/y.mp4"}`, "https://a/y.mp4", true},
		{"tunnel", `{"status":"tunnel","url":"https://a/z.mp4"}`, "https://a/z.mp4", true},
		{"picker", `{"status":"picker","picker":[{"url":"https://a/1.mp4"},{"url":"https://a/2.mp4"}]}`, "https://a/1.mp4", true},
		{"picker empty", `{"status":"picker","picker":[]}`, "", false},
		{"redirect without url", `{"status":"redirect"}`, "", false},
		{"unknown status", `{"status":"queued"}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp backendResponse
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := resp.mediaURL()
			if ok != tt.ok || got != tt.want {
				t.Errorf("mediaURL() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseBackendList(t *testing.T) {
	got := parseBackendList("main=https://a.example/, backup=https://b.example/ ,,bad,=nope,empty=")
	want := []backendDescriptor{
		{Name: "main", Endpoint: "https://a.example/"},
		{Name: "backup", Endpoint: "https://b.example/"},
	}
	if len(got) != len(want) {
		t.Fatalf("parseBackendList returned %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
