package pipeline

import (
	"strings"
	"time"
)

// Window is a half-open interval [Start, End) of the media timeline
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Length returns End - Start
func (w Window) Length() time.Duration {
	return w.End - w.Start
}

// Windows splits a total duration into floor(total/size)+1 windows of
// size, the last one clipped to total. When total is an exact multiple of
// size the last window is empty.
func Windows(total, size time.Duration) []Window {
	if total < 0 {
		total = 0
	}
	if size <= 0 {
		return []Window{{Start: 0, End: total}}
	}

	n := int(total/size) + 1
	out := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * size
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, Window{Start: start, End: end})
	}
	return out
}

// SegmentOutcome tags what happened to one window
type SegmentOutcome string

const (
	SegmentTranscribed SegmentOutcome = "transcribed"
	SegmentSkipped     SegmentOutcome = "skipped"
)

// SegmentResult is the per-window result of the transcription loop.
// Skipped windows contribute no text and carry the reason.
type SegmentResult struct {
	Index   int
	Window  Window
	Outcome SegmentOutcome
	Text    string
	Reason  string
}

// Transcribed builds a successful result
func Transcribed(index int, w Window, text string) SegmentResult {
	return SegmentResult{Index: index, Window: w, Outcome: SegmentTranscribed, Text: text}
}

// Skipped builds a result for a window that produced no text
func Skipped(index int, w Window, reason string) SegmentResult {
	return SegmentResult{Index: index, Window: w, Outcome: SegmentSkipped, Reason: reason}
}

// JoinSegments concatenates transcribed texts with single spaces in window order
func JoinSegments(results []SegmentResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Outcome != SegmentTranscribed {
			continue
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
