package report

import "fmt"

const (
	toneThreshold      = 0.15
	moderateSubjective = 0.45
	strongSubjective   = 0.75
)

// Describe turns polarity and subjectivity scores into a tone, a style and
// a short comment.
func Describe(polarity, subjectivity float64) (tone, style, comment string) {
	tone = "neutral"
	switch {
	case polarity > toneThreshold:
		tone = "positive"
	case polarity < -toneThreshold:
		tone = "negative"
	}

	switch {
	case subjectivity > strongSubjective:
		style = "very subjective style"
		comment = "The text carries a lot of personal opinion, guesses or emotional language rather than plain facts."
	case subjectivity > moderateSubjective:
		style = "moderately subjective style"
		comment = "The text mixes personal judgement and interpretation with factual information."
	default:
		style = "objective style"
		comment = "The text is built on facts and data without strong emotional judgement or personal opinion."
	}
	return tone, style, comment
}

func SentimentSummary(polarity, subjectivity float64) string {
	tone, style, comment := Describe(polarity, subjectivity)

	emoji := "📊"
	switch {
	case polarity > toneThreshold:
		emoji = "📈"
	case polarity < -toneThreshold:
		emoji = "📉"
	}

	return fmt.Sprintf("🧠 Sentiment of the report:\n\n"+
		"%s Tone: %s (score: %.2f)\n"+
		"🧐 Style: %s (score: %.2f)\n\n"+
		"💬 Comment: %s", emoji, tone, polarity, style, subjectivity, comment)
}
