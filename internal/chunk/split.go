package chunk

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// maxEntityLen bounds how far back an unterminated character reference is
// looked for ("&thetasym;" is the longest named one in common use).
const maxEntityLen = 10

// ForceSplit cuts s into chunks of at most budget bytes without breaking a
// UTF-8 sequence. Each window is shrunk to its longest valid prefix; a byte
// that cannot start any valid sequence is skipped so the cursor always moves
// forward. When more input follows, a cut inside an unfinished HTML tag or
// character reference is moved back to where that markup starts.
func ForceSplit(s string, budget int) []string {
	if s == "" || budget <= 0 {
		return nil
	}

	var chunks []string
	pos := 0
	for pos < len(s) {
		end := min(pos+budget, len(s))
		window := s[pos:end]
		window = window[:validPrefix(window)]

		if window == "" {
			r, size := utf8.DecodeRuneInString(s[pos:])
			if r == utf8.RuneError && size <= 1 {
				slog.Warn("skipping undecodable byte during forced split", "offset", pos, "byte", fmt.Sprintf("%#x", s[pos]))
				pos++
				continue
			}
			// budget is narrower than a single rune
			slog.Warn("rune wider than budget emitted whole", "offset", pos, "size", size, "budget", budget)
			chunks = append(chunks, s[pos:pos+size])
			pos += size
			continue
		}

		if pos+len(window) < len(s) {
			window = trimOpenMarkup(window)
		}

		chunks = append(chunks, window)
		pos += len(window)
	}
	return chunks
}

func validPrefix(w string) int {
	n := 0
	for n < len(w) {
		r, size := utf8.DecodeRuneInString(w[n:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		n += size
	}
	return n
}

func trimOpenMarkup(w string) string {
	if i := strings.LastIndexByte(w, '<'); i > 0 && i > strings.LastIndexByte(w, '>') {
		return w[:i]
	}

	if i := strings.LastIndexByte(w, '&'); i > 0 && len(w)-i <= maxEntityLen && !strings.ContainsAny(w[i:], "; \t\n") {
		return w[:i]
	}

	return w
}
