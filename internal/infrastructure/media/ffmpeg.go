package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FFmpeg probes and slices audio with the ffmpeg/ffprobe binaries
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	tmpDir      string
}

// NewFFmpeg creates a media tool using the given binaries.
// An empty tmpDir uses os.TempDir().
func NewFFmpeg(ffmpegPath, ffprobePath, tmpDir string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, tmpDir: tmpDir}
}

// Available reports whether both binaries are in PATH
func (f *FFmpeg) Available() bool {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(f.ffprobePath)
	return err == nil
}

// Duration returns the media duration as reported by ffprobe
func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	// ffprobe -v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 input
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbeDuration(string(out))
}

// ParseProbeDuration converts ffprobe's seconds output into a duration
func ParseProbeDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: unexpected duration %q: %w", raw, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("ffprobe: negative duration %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Cut extracts [start, start+length) as mono 16kHz WAV.
// The returned cleanup removes the temporary file.
func (f *FFmpeg) Cut(ctx context.Context, path string, start, length time.Duration) (string, func(), error) {
	noop := func() {}

	tmp, err := os.CreateTemp(f.tmpDir, "talk-tracer-segment-*.wav")
	if err != nil {
		return "", noop, fmt.Errorf("create segment file: %w", err)
	}
	out := tmp.Name()
	tmp.Close()

	cleanup := func() {
		os.Remove(out)
	}

	// ffmpeg -y -ss start -t length -i input -vn -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y", "-v", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(length),
		"-i", path,
		"-vn", "-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, cleanup, nil
}

// TempFile reserves a local file for downloaded media, keeping the extension
func (f *FFmpeg) TempFile(objectName string) (string, func(), error) {
	tmp, err := os.CreateTemp(f.tmpDir, "talk-tracer-media-*"+filepath.Ext(objectName))
	if err != nil {
		return "", func() {}, fmt.Errorf("create media file: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	return name, func() { os.Remove(name) }, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
