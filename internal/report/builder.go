package report

import (
	"context"
	"fmt"
	"log/slog"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/retry"
	"pulsedigest/pkg/llm"
	"pulsedigest/pkg/market"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	reportTitle   = "📊 Market report"
	promptPreview = 200
)

const DefaultContinuation = `Top gainers 🚀 / Losers 📉
- 2 to 3 stocks each with the reason
→ Conclusion.

Macro news 📰
- 3 main headlines and their impact

Quotes of the day 🗣
- up to 2 quotes and what they mean

Number of the day 🤔

⚡️ Idea of the day: 2 sentences of actionable advice.

‼️ Plain text only, no HTML.
‼️ Separate paragraphs with DOUBLE line breaks.
‼️ Put an emoji before every section heading.`

// Cache stores rendered source blocks by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Options struct {
	// Sources feed the prompt in order. A failing source is skipped.
	Sources      []market.Source
	Keywords     []KeywordTerm
	Continuation string
	Daily        *DailyStore
	Halving      market.Source
	Cache        Cache
	HTML         bool
}

type Digest struct {
	Date      time.Time
	Prompt    string
	Report    string
	Body      string
	ModelUsed string
	Skipped   []string
}

type Builder struct {
	client   llm.ReportClient
	policy   retry.Policy
	opts     Options
	keywords *KeywordMatcher
	now      func() time.Time
}

func NewBuilder(client llm.ReportClient, policy retry.Policy, opts Options) *Builder {
	return &Builder{
		client:   client,
		policy:   policy,
		opts:     opts,
		keywords: NewKeywordMatcher(opts.Keywords),
		now:      time.Now,
	}
}

// Build gathers the source blocks, asks the model for the report and
// assembles the final digest body. A model failure aborts the build.
func (b *Builder) Build(ctx context.Context) (*Digest, error) {
	today := b.now()
	d := &Digest{Date: today}

	parts := []string{"📅 Market news for " + today.Format("02.01.2006")}
	for _, src := range b.opts.Sources {
		block := b.fetch(ctx, today, src)
		if block == "" {
			d.Skipped = append(d.Skipped, src.Name())
			continue
		}
		parts = append(parts, block)
	}
	parts = append(parts, b.opts.Continuation)

	d.Prompt = joinNonEmpty(parts)
	slog.Info("prompt assembled", "chars", len([]rune(d.Prompt)), "skipped", d.Skipped, "preview", chunk.Preview(d.Prompt, promptPreview))

	var res *llm.ReportResult
	err := b.policy.Do(ctx, "generate report", func(ctx context.Context) error {
		var err error
		res, err = b.client.GenerateReport(ctx, d.Prompt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	d.Report = res.Text
	d.ModelUsed = res.ModelUsed
	slog.Info("report generated", "chars", len([]rune(d.Report)), "model", d.ModelUsed)

	components := []string{
		reportTitle,
		d.Report,
		b.keywords.Alert(d.Report),
		b.dailyDiff(d.Report),
		b.sentiment(ctx, d.Report),
	}
	if b.opts.Halving != nil {
		components = append(components, b.fetch(ctx, today, b.opts.Halving))
	}

	if b.opts.HTML {
		for i, c := range components {
			components[i] = html.EscapeString(c)
		}
	}

	d.Body = joinNonEmpty(components)
	return d, nil
}

func (b *Builder) fetch(ctx context.Context, day time.Time, src market.Source) string {
	key := day.Format(dayLayout) + ":" + src.Name()

	if b.opts.Cache != nil {
		block, ok, err := b.opts.Cache.Get(ctx, key)
		if err != nil {
			slog.Warn("block cache read failed", "source", src.Name(), "error", err)
		} else if ok {
			slog.Info("block served from cache", "source", src.Name())
			return block
		}
	}

	block, err := src.Fetch(ctx)
	if err != nil {
		slog.Warn("source skipped", "source", src.Name(), "error", err)
		return ""
	}
	block = strings.TrimSpace(block)

	if b.opts.Cache != nil && block != "" {
		if err := b.opts.Cache.Set(ctx, key, block); err != nil {
			slog.Warn("block cache write failed", "source", src.Name(), "error", err)
		}
	}
	return block
}

func (b *Builder) dailyDiff(text string) string {
	if b.opts.Daily == nil {
		return ""
	}

	diff, err := b.opts.Daily.StoreAndCompare(text)
	if err != nil {
		slog.Warn("daily comparison skipped", "error", err)
		return ""
	}
	return diff
}

func (b *Builder) sentiment(ctx context.Context, text string) string {
	res, err := b.client.ScoreSentiment(ctx, text)
	if err != nil {
		slog.Warn("sentiment skipped", "error", err)
		return ""
	}
	return SentimentSummary(res.Polarity, res.Subjectivity)
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, chunk.ParagraphDelimiter)
}
