package chunk

import (
	"fmt"
	"log/slog"
)

// Segment is one message handed to the sink. Marker is empty when the whole
// report fits a single message.
type Segment struct {
	Index   int
	Total   int
	Marker  string
	Payload string
}

func (s Segment) Text() string {
	return s.Marker + s.Payload
}

func (s Segment) Bytes() int {
	return len(s.Marker) + len(s.Payload)
}

func Marker(label string, i, n int) string {
	return fmt.Sprintf("%s %d/%d:\n\n", label, i, n)
}

// Frame segments text with room reserved for position markers and labels
// each segment "Part i/N". When the reduced budget yields a single segment
// the text is segmented again with the full budget and left unmarked.
// Headroom that leaves no budget is ignored; New rejects such configs.
func Frame(text string, cfg Config) []Segment {
	reduced := cfg.Budget - cfg.MarkerHeadroom
	if reduced <= 0 {
		slog.Warn("marker headroom leaves no budget, ignoring it", "budget", cfg.Budget, "marker_headroom", cfg.MarkerHeadroom)
		reduced = cfg.Budget
	}

	payloads := Pack(text, reduced)
	if len(payloads) == 1 {
		payloads = Pack(text, cfg.Budget)
	}

	total := len(payloads)
	if total == 0 {
		return nil
	}

	segments := make([]Segment, total)
	for i, p := range payloads {
		seg := Segment{Index: i + 1, Total: total, Payload: p}
		if total > 1 {
			seg.Marker = Marker(cfg.Label, i+1, total)
		}

		if seg.Bytes() > cfg.HardLimit {
			slog.Error("framed segment exceeds transport hard limit, marker headroom is misconfigured",
				"part", seg.Index, "total", total, "bytes", seg.Bytes(), "hard_limit", cfg.HardLimit,
				"marker_headroom", cfg.MarkerHeadroom)
		}

		segments[i] = seg
	}
	return segments
}
