package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// backendDescriptor is one remote resolver, tried in fixed priority order.
type backendDescriptor struct {
	Name     string
	Endpoint string
}

// fallbackBackends is the ordered try list. Overridden at startup through
// FALLBACK_BACKENDS ("name=url,name=url").
var fallbackBackends = []backendDescriptor{
	{Name: "cobalt-main", Endpoint: "https://api.cobalt.tools/"},
	{Name: "cobalt-backup", Endpoint: "https://cobalt-backend.canine.tools/"},
}

// backendResult is the normalized success shape every backend reduces to.
type backendResult struct {
	MediaURL string
	Backend  string
}

// backendResponse covers the response variants the resolvers emit: redirect,
// stream and tunnel carry the URL directly, picker carries a candidate list,
// error carries a code.
type backendResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Picker []struct {
		URL string `json:"url"`
	} `json:"picker"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

// mediaURL normalizes the variant shapes into a single media URL.
func (r *backendResponse) mediaURL() (string, bool) {
	switch r.Status {
	case "redirect", "stream", "tunnel":
		if r.URL != "" {
			return r.URL, true
		}
	case "picker":
		if len(r.Picker) > 0 && r.Picker[0].URL != "" {
			return r.Picker[0].URL, true
		}
	}
	return "", false
}

// ResolveViaBackends tries each backend in order, sequentially, and returns
// the first success. Failures are logged and skipped; exhausting the list is
// the only way ErrAllBackendsExhausted arises.
func ResolveViaBackends(ref VideoRef, quality QualityTier) (*backendResult, error) {
	for _, b := range fallbackBackends {
		res, err := callBackend(b, ref, quality)
		if err != nil {
			log.Printf("Backend %s failed for %s: %v", b.Name, ref.VideoID, err)
			continue
		}
		log.Printf("Backend %s resolved %s", b.Name, ref.VideoID)
		return res, nil
	}
	return nil, ErrAllBackendsExhausted
}

func callBackend(b backendDescriptor, ref VideoRef, quality QualityTier) (*backendResult, error) {
	body, err := json.Marshal(map[string]string{
		"url":           ref.RawURL,
		"videoQuality":  strconv.Itoa(int(quality)),
		"filenameStyle": "basic",
	})
	if err != nil {
		return nil, err
	}

	reqCtx, cancelReq := context.WithTimeout(ctx, BackendTimeout)
	defer cancelReq()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var decoded backendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %v", err)
	}
	if decoded.Status == "error" {
		return nil, fmt.Errorf("backend error: %s", decoded.Error.Code)
	}
	mediaURL, ok := decoded.mediaURL()
	if !ok {
		return nil, fmt.Errorf("unrecognized response shape %q", decoded.Status)
	}
	return &backendResult{MediaURL: mediaURL, Backend: b.Name}, nil
}

// parseBackendList parses the "name=url,name=url" environment form.
func parseBackendList(s string) []backendDescriptor {
	var out []backendDescriptor
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, endpoint, found := strings.Cut(part, "=")
		if !found || name == "" || endpoint == "" {
			continue
		}
		out = append(out, backendDescriptor{Name: name, Endpoint: endpoint})
	}
	return out
}
