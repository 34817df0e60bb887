package news

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

type fakeClient struct {
	name     string
	articles []Article
	err      error
	calls    int
}

func (f *fakeClient) Fetch(ctx context.Context, limit int) ([]Article, error) {
	f.calls++
	return f.articles, f.err
}

func (f *fakeClient) Name() string { return f.name }

func TestHeadlinesFallsThrough(t *testing.T) {
	broken := &fakeClient{name: "broken", err: errors.New("boom")}
	empty := &fakeClient{name: "empty"}
	good := &fakeClient{name: "good", articles: []Article{{Headline: "Stocks rally"}}}
	unused := &fakeClient{name: "unused", articles: []Article{{Headline: "never"}}}

	articles, err := Headlines(context.Background(), []NewsClient{broken, empty, good, unused}, 5)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "Stocks rally", articles[0].Headline)
	assert.Equal(t, 0, unused.calls)
}

func TestHeadlinesAllFail(t *testing.T) {
	a := &fakeClient{name: "a", err: errors.New("first")}
	b := &fakeClient{name: "b", err: errors.New("second")}

	_, err := Headlines(context.Background(), []NewsClient{a, b}, 5)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, strings.Contains(err.Error(), "first"))
	assert.Equal(t, true, strings.Contains(err.Error(), "second"))
}

func TestHeadlinesNoClients(t *testing.T) {
	_, err := Headlines(context.Background(), nil, 5)
	assert.NotEqual(t, nil, err)
}

func TestFormatBlock(t *testing.T) {
	articles := []Article{
		{Headline: " Fed holds rates ", Publisher: "Reuters"},
		{Headline: "Oil slides"},
		{Headline: "Cut off", Publisher: "AP"},
	}

	got := FormatBlock(articles, 2)

	want := "📰 Market news\n" +
		"• Fed holds rates (Reuters)\n" +
		"• Oil slides\n\n" +
		analysisInstruction
	assert.Equal(t, want, got)
}

func TestBlockFetch(t *testing.T) {
	c := &fakeClient{name: "x", articles: []Article{{Headline: "One", Publisher: "P"}}}
	b := NewBlock([]NewsClient{c}, 3)

	got, err := b.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, "news", b.Name())
	assert.Equal(t, true, strings.HasPrefix(got, "📰 Market news\n• One (P)"))
}
