package chunk

import (
	"log/slog"
	"strings"
)

const ParagraphDelimiter = "\n\n"

// Pack groups the paragraphs of text into ordered segments of at most
// budget bytes each. Paragraphs are packed greedily; a paragraph larger than
// the budget is force split, every forced chunk but the last is emitted as
// its own segment and the last one stays open so a following paragraph can
// still join it.
func Pack(text string, budget int) []string {
	if budget <= 0 {
		return nil
	}

	var (
		segments []string
		acc      []string
		accBytes int
	)

	flush := func() {
		if len(acc) > 0 {
			segments = append(segments, strings.Join(acc, ParagraphDelimiter))
		}
		acc, accBytes = nil, 0
	}

	for i, p := range strings.Split(text, ParagraphDelimiter) {
		if strings.TrimSpace(p) == "" {
			continue
		}

		sep := 0
		if len(acc) > 0 {
			sep = len(ParagraphDelimiter)
		}

		if accBytes+sep+len(p) <= budget {
			acc = append(acc, p)
			accBytes += sep + len(p)
			continue
		}

		flush()

		if len(p) <= budget {
			acc = []string{p}
			accBytes = len(p)
			continue
		}

		slog.Info("paragraph exceeds budget, force splitting",
			"paragraph", i, "bytes", len(p), "budget", budget, "preview", Preview(p, 30))

		parts := ForceSplit(p, budget)
		if len(parts) == 0 {
			continue
		}
		segments = append(segments, parts[:len(parts)-1]...)
		last := parts[len(parts)-1]
		acc = []string{last}
		accBytes = len(last)
	}
	flush()

	// A forced chunk can consist of nothing but whitespace; the transport
	// rejects those.
	out := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Preview returns the first n runes of s on a single line.
func Preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
