package report

import (
	"regexp"
	"strings"
)

type KeywordTerm struct {
	Term     string `yaml:"term"`
	Reaction string `yaml:"reaction"`
}

var DefaultKeywordTerms = []KeywordTerm{
	{Term: "AI", Reaction: "🧠 Mentions of AI may point to growing interest in tech."},
	{Term: "crash", Reaction: "⚠️ Possible panic in the market. Worth being careful."},
	{Term: "inflation", Reaction: "📉 Rising inflation drives macro decisions and rates."},
	{Term: "recession", Reaction: "📉 Recession risk can weigh on equity markets."},
	{Term: "interest rates", Reaction: "💰 Possible impact on bond and equity markets."},
}

// Word boundaries are Unicode-aware so terms in any script match.
const (
	wordStart = `(?i)(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

type keywordPattern struct {
	term    KeywordTerm
	pattern *regexp.Regexp
}

// KeywordMatcher holds the compiled patterns for a set of terms.
type KeywordMatcher struct {
	patterns []keywordPattern
}

func NewKeywordMatcher(terms []KeywordTerm) *KeywordMatcher {
	m := &KeywordMatcher{patterns: make([]keywordPattern, 0, len(terms))}
	for _, kt := range terms {
		m.patterns = append(m.patterns, keywordPattern{
			term:    kt,
			pattern: regexp.MustCompile(wordStart + regexp.QuoteMeta(kt.Term) + wordEnd),
		})
	}
	return m
}

// Alert lists the configured terms found in text as whole words, ignoring
// case, in configuration order.
func (m *KeywordMatcher) Alert(text string) string {
	var findings []string
	for _, p := range m.patterns {
		if p.pattern.MatchString(text) {
			findings = append(findings, "• "+p.term.Term+": "+p.term.Reaction)
		}
	}

	if len(findings) == 0 {
		return "🟢 No key warning signals found."
	}
	return "🔺 Key signals detected:\n" + strings.Join(findings, "\n")
}
