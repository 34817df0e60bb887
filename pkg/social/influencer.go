package social

import (
	"context"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	CategoryCrypto = "crypto"
	CategoryStock  = "stock"

	Lookback   = 24 * time.Hour
	quoteRunes = 140
	userAgent  = "pulsedigest/1.0"
)

type Influencer struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Category string   `yaml:"category"`
}

var DefaultInfluencers = []Influencer{
	{Name: "Elon Musk", Aliases: []string{"Elon Musk", "Musk"}, Category: CategoryStock},
	{Name: "Donald Trump", Aliases: []string{"Donald Trump", "Trump"}, Category: CategoryStock},
	{Name: "Mark Zuckerberg", Aliases: []string{"Mark Zuckerberg"}, Category: CategoryStock},
	{Name: "Jeff Bezos", Aliases: []string{"Jeff Bezos"}, Category: CategoryStock},
	{Name: "Bill Gates", Aliases: []string{"Bill Gates"}, Category: CategoryStock},
	{Name: "Warren Buffett", Aliases: []string{"Warren Buffett", "Buffett"}, Category: CategoryStock},
	{Name: "Larry Fink", Aliases: []string{"Larry Fink"}, Category: CategoryStock},
	{Name: "Vitalik Buterin", Aliases: []string{"Vitalik Buterin", "Buterin"}, Category: CategoryCrypto},
	{Name: "Changpeng Zhao", Aliases: []string{"Changpeng Zhao", "CZ"}, Category: CategoryCrypto},
	{Name: "Michael Saylor", Aliases: []string{"Michael Saylor"}, Category: CategoryCrypto},
	{Name: "Anthony Pompliano", Aliases: []string{"Anthony Pompliano"}, Category: CategoryCrypto},
	{Name: "Balaji Srinivasan", Aliases: []string{"Balaji Srinivasan", "Balaji"}, Category: CategoryCrypto},
}

// QuoteSource returns recent mentions of alias published after since.
type QuoteSource interface {
	Name() string
	Quotes(ctx context.Context, alias string, since time.Time) ([]string, error)
}

// Quotes collects at most one recent quote per influencer of a category.
type Quotes struct {
	category    string
	influencers []Influencer
	sources     []QuoteSource
	now         func() time.Time
}

func NewQuotes(category string, influencers []Influencer, sources ...QuoteSource) *Quotes {
	return &Quotes{
		category:    category,
		influencers: influencers,
		sources:     sources,
		now:         time.Now,
	}
}

func (q *Quotes) Name() string {
	return q.category + "-quotes"
}

func (q *Quotes) Fetch(ctx context.Context) (string, error) {
	since := q.now().Add(-Lookback)

	var bullets []string
	for _, inf := range q.influencers {
		if inf.Category != q.category {
			continue
		}
		if quote, ok := q.firstQuote(ctx, inf, since); ok {
			bullets = append(bullets, "— "+inf.Name+": "+quote)
		}
	}

	if len(bullets) == 0 {
		return "", nil
	}

	title := "🗣 People moving the stock market"
	if q.category == CategoryCrypto {
		title = "🗣 Crypto leaders"
	}
	return title + "\n" + strings.Join(bullets, "\n"), nil
}

func (q *Quotes) firstQuote(ctx context.Context, inf Influencer, since time.Time) (string, bool) {
	for _, alias := range inf.Aliases {
		for _, src := range q.sources {
			quotes, err := src.Quotes(ctx, alias, since)
			if err != nil {
				slog.Warn("quote source failed", "source", src.Name(), "alias", alias, "error", err)
				continue
			}
			for _, text := range quotes {
				if text = cut(text, quoteRunes); text != "" {
					return text, true
				}
			}
		}
	}
	return "", false
}

// cut flattens text to one line, unescapes entities and truncates it to
// n runes with a trailing ellipsis.
func cut(text string, n int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	text = html.UnescapeString(text)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "…"
}
