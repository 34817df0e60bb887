package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	reportMaxTokens   = 400
	reportTemperature = 0.4
	sentimentTokens   = 100
)

type ReportResult struct {
	Text      string
	ModelUsed string
}

// SentimentResult holds polarity in [-1, 1] and subjectivity in [0, 1].
type SentimentResult struct {
	Polarity     float64
	Subjectivity float64
	ModelUsed    string
}

type ReportClient interface {
	GenerateReport(ctx context.Context, prompt string) (*ReportResult, error)
	ScoreSentiment(ctx context.Context, text string) (*SentimentResult, error)
}

func parseSentiment(content, model string) (*SentimentResult, error) {
	content = cleanJSONResponse(content)

	var parsed struct {
		Polarity     float64 `json:"polarity"`
		Subjectivity float64 `json:"subjectivity"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	return &SentimentResult{
		Polarity:     clamp(parsed.Polarity, -1, 1),
		Subjectivity: clamp(parsed.Subjectivity, 0, 1),
		ModelUsed:    model,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
