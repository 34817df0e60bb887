package chunk

import (
	"regexp"
	"strings"
)

var (
	blankRun    = regexp.MustCompile(`\n{3,}`)
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize canonicalizes whitespace so paragraph splitting is reliable:
// a header line (one starting with a section marker and carrying content)
// is always followed by a blank line, runs of three or more newlines become
// exactly two, and the text is trimmed. Normalize is idempotent.
func Normalize(text string, markers []string) string {
	text = lineEndings.Replace(text)
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		out = append(out, line)
		if i+1 < len(lines) && isHeader(line, markers) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}

	text = blankRun.ReplaceAllString(strings.Join(out, "\n"), ParagraphDelimiter)
	return strings.TrimSpace(text)
}

func isHeader(line string, markers []string) bool {
	for _, m := range markers {
		if rest, ok := strings.CutPrefix(line, m); ok && strings.TrimSpace(rest) != "" {
			return true
		}
	}
	return false
}
