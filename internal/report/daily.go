package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// DailyStore keeps one report text per day under Dir.
type DailyStore struct {
	Dir string
	now func() time.Time
}

func NewDailyStore(dir string) *DailyStore {
	return &DailyStore{Dir: dir, now: time.Now}
}

func (s *DailyStore) path(day time.Time) string {
	return filepath.Join(s.Dir, day.Format(dayLayout)+".txt")
}

// StoreAndCompare saves today's text and describes how it differs from
// yesterday's.
func (s *DailyStore) StoreAndCompare(text string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	today := s.now()
	if err := os.WriteFile(s.path(today), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write daily report: %w", err)
	}

	previous, err := os.ReadFile(s.path(today.AddDate(0, 0, -1)))
	if errors.Is(err, fs.ErrNotExist) {
		return "📊 No report from yesterday to compare with.", nil
	}
	if err != nil {
		return "", fmt.Errorf("read yesterday's report: %w", err)
	}

	return "📊 Compared with yesterday's report:\n" + CompareReports(string(previous), text), nil
}

// CompareReports lists lines added in next and lines removed from prev,
// each in order of first appearance.
func CompareReports(prev, next string) string {
	prevLines := strings.Split(prev, "\n")
	nextLines := strings.Split(next, "\n")

	added := difference(nextLines, prevLines)
	removed := difference(prevLines, nextLines)

	var out []string
	if len(added) > 0 {
		out = append(out, "➕ New lines:")
		for _, l := range added {
			out = append(out, "  "+l)
		}
	}
	if len(removed) > 0 {
		out = append(out, "➖ Removed:")
		for _, l := range removed {
			out = append(out, "  "+l)
		}
	}

	if len(out) == 0 {
		return "No changes."
	}
	return strings.Join(out, "\n")
}

func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, l := range b {
		exclude[l] = struct{}{}
	}

	var out []string
	for _, l := range a {
		if _, ok := exclude[l]; ok {
			continue
		}
		exclude[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
