package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// downloadArgs assembles the yt-dlp invocation as a typed argument list (never
// a shell string). The URL goes last so it can't be mistaken for a flag.
func downloadArgs(ref VideoRef, pref FormatPreference, outputPath string) []string {
	return []string{
		"-f", pref.Expression(),
		"--merge-output-format", "mp4",
		"--audio-quality", "0",
		"--embed-thumbnail",
		"--add-metadata",
		"--postprocessor-args", "ffmpeg:-c:a aac -b:a 192k",
		"-o", outputPath,
		"--no-playlist",
		"--progress",
		"--newline",
		"--user-agent", BrowserUserAgent,
		"--referer", WatchPageReferer,
		"--no-check-certificates",
		ref.RawURL,
	}
}

// Example progress line: [download]  42.7% of 10.32MiB at 1.21MiB/s ETA 00:07
var progressRe = regexp.MustCompile(`\[download\]\s+(\d{1,3}(?:\.\d+)?)%`)

// runLocalDownload spawns yt-dlp and tracks it to completion, feeding progress
// percentages to onProgress as they are parsed from the tool's output. Success
// requires exit code 0 and the output file actually present on disk.
func runLocalDownload(parent context.Context, ref VideoRef, pref FormatPreference, outputPath string, onProgress func(int)) error {
	runCtx, cancelRun := context.WithTimeout(parent, DownloadTimeout)
	defer cancelRun()

	cmd := exec.CommandContext(runCtx, ytdlpBin, downloadArgs(ref, pref, outputPath)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: install yt-dlp and make sure %q is on PATH", ErrToolNotInstalled, ytdlpBin)
		}
		return fmt.Errorf("starting %s: %w", ytdlpBin, err)
	}

	var tail outputTail
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanToolOutput(stdout, onProgress, &tail)
	}()
	go func() {
		defer wg.Done()
		scanToolOutput(stderr, onProgress, &tail)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		removePartials(outputPath)
		toolOut := tail.String()
		log.Printf("yt-dlp failed for %s: %v\n%s", ref.VideoID, err, toolOut)
		if strings.Contains(toolOut, "Sign in to confirm") {
			return fmt.Errorf("%w: %s", ErrUpstreamBlocked, firstLine(toolOut))
		}
		return fmt.Errorf("yt-dlp exited with an error: %w", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		removePartials(outputPath)
		return fmt.Errorf("yt-dlp reported success but produced no file: %w", err)
	}
	return nil
}

// scanToolOutput reads one subprocess stream line by line with a bounded
// buffer, recording the tail for diagnostics and emitting parsed progress
// percentages.
func scanToolOutput(r io.Reader, onProgress func(int), tail *outputTail) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if tail != nil {
			tail.WriteLine(line)
		}
		m := progressRe.FindStringSubmatch(line)
		if len(m) != 2 || onProgress == nil {
			continue
		}
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			p := int(f)
			if p < 0 {
				p = 0
			}
			if p > 100 {
				p = 100
			}
			onProgress(p)
		}
	}
}

// outputTail keeps the last few KB of tool output so failures can be
// diagnosed without buffering the whole stream.
type outputTail struct {
	mu  sync.Mutex
	buf []byte
}

const outputTailMax = 8 * 1024

func (t *outputTail) WriteLine(line string) {
	t.mu.Lock()
	t.buf = append(t.buf, line...)
	t.buf = append(t.buf, '\n')
	if len(t.buf) > outputTailMax {
		t.buf = t.buf[len(t.buf)-outputTailMax:]
	}
	t.mu.Unlock()
}

func (t *outputTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

// removePartials makes sure a failed run never leaves a servable file behind.
func removePartials(outputPath string) {
	_ = os.Remove(outputPath)
	_ = os.Remove(outputPath + ".part")
}
