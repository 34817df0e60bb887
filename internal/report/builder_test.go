package report

import (
	"context"
	"errors"
	"pulsedigest/internal/retry"
	"pulsedigest/pkg/llm"
	"pulsedigest/pkg/market"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeSource struct {
	name  string
	block string
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) (string, error) {
	f.calls++
	return f.block, f.err
}

type fakeLLM struct {
	prompts      []string
	reportErrs   []error
	text         string
	sentiment    *llm.SentimentResult
	sentimentErr error
}

func (f *fakeLLM) GenerateReport(ctx context.Context, prompt string) (*llm.ReportResult, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.reportErrs) > 0 {
		err := f.reportErrs[0]
		f.reportErrs = f.reportErrs[1:]
		return nil, err
	}
	return &llm.ReportResult{Text: f.text, ModelUsed: "fake-model"}, nil
}

func (f *fakeLLM) ScoreSentiment(ctx context.Context, text string) (*llm.SentimentResult, error) {
	return f.sentiment, f.sentimentErr
}

type memCache map[string]string

func (m memCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memCache) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Delay: time.Millisecond, Multiplier: 1}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
}

func TestBuildAssemblesComponents(t *testing.T) {
	indices := &fakeSource{name: "indices", block: "📈 Indices\nS&P 500: $512 (+0.45%)"}
	broken := &fakeSource{name: "whales", err: errors.New("quota exceeded")}
	empty := &fakeSource{name: "quotes"}
	halving := &fakeSource{name: "halving", block: "⏳ Bitcoin halving in about 700 days."}
	client := &fakeLLM{
		text:      "Stocks rose on AI optimism.",
		sentiment: &llm.SentimentResult{Polarity: 0.3, Subjectivity: 0.2},
	}

	b := NewBuilder(client, testPolicy(), Options{
		Sources:      []market.Source{indices, broken, empty},
		Keywords:     DefaultKeywordTerms,
		Continuation: "Write the report.",
		Halving:      halving,
	})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, "fake-model", d.ModelUsed)
	assert.Equal(t, []string{"whales", "quotes"}, d.Skipped)
	assert.Equal(t, "📅 Market news for 02.03.2026\n\n📈 Indices\nS&P 500: $512 (+0.45%)\n\nWrite the report.", d.Prompt)

	parts := strings.Split(d.Body, "\n\n")
	assert.Equal(t, "📊 Market report", parts[0])
	assert.Equal(t, "Stocks rose on AI optimism.", parts[1])
	assert.Equal(t, true, strings.HasPrefix(parts[2], "🔺 Key signals detected:\n• AI:"))
	assert.Equal(t, true, strings.Contains(d.Body, "📈 Tone: positive (score: 0.30)"))
	assert.Equal(t, true, strings.HasSuffix(d.Body, "⏳ Bitcoin halving in about 700 days."))
}

func TestBuildRetriesModel(t *testing.T) {
	client := &fakeLLM{
		reportErrs: []error{errors.New("timeout")},
		text:       "Calm day.",
		sentiment:  &llm.SentimentResult{},
	}
	b := NewBuilder(client, testPolicy(), Options{})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(client.prompts))
	assert.Equal(t, "Calm day.", d.Report)
}

func TestBuildAbortsWhenModelFails(t *testing.T) {
	fail := errors.New("503")
	client := &fakeLLM{reportErrs: []error{fail, fail, fail}}
	b := NewBuilder(client, testPolicy(), Options{})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, (*Digest)(nil), d)
	assert.Equal(t, true, errors.Is(err, fail))
	assert.Equal(t, 3, len(client.prompts))
}

func TestBuildSkipsSentimentOnError(t *testing.T) {
	client := &fakeLLM{text: "Flat.", sentimentErr: errors.New("bad json")}
	b := NewBuilder(client, testPolicy(), Options{})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, false, strings.Contains(d.Body, "Sentiment"))
}

func TestBuildUsesCache(t *testing.T) {
	cache := memCache{"2026-03-02:crypto": "cached crypto"}
	crypto := &fakeSource{name: "crypto", block: "live crypto"}
	fng := &fakeSource{name: "fng", block: "  live fng  "}
	client := &fakeLLM{text: "ok", sentiment: &llm.SentimentResult{}}

	b := NewBuilder(client, testPolicy(), Options{Sources: []market.Source{crypto, fng}, Cache: cache})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, crypto.calls)
	assert.Equal(t, "live fng", cache["2026-03-02:fng"])
	assert.Equal(t, true, strings.Contains(d.Prompt, "cached crypto\n\nlive fng"))
}

func TestBuildEscapesHTML(t *testing.T) {
	client := &fakeLLM{text: "P&L <up>", sentiment: &llm.SentimentResult{}}
	b := NewBuilder(client, testPolicy(), Options{HTML: true})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(d.Body, "P&amp;L &lt;up&gt;"))
	assert.Equal(t, "P&L <up>", d.Report)
}

func TestBuildWritesDailyFile(t *testing.T) {
	client := &fakeLLM{text: "line one", sentiment: &llm.SentimentResult{}}
	daily := NewDailyStore(t.TempDir())
	daily.now = fixedNow

	b := NewBuilder(client, testPolicy(), Options{Daily: daily})
	b.now = fixedNow

	d, err := b.Build(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(d.Body, "📊 No report from yesterday to compare with."))
}
