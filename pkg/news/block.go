package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const analysisInstruction = "→ Please analyse these headlines: a short conclusion and the likely market impact."

// Headlines asks each client in order and returns the first non-empty
// result, so a failing or empty source falls through to the next one.
func Headlines(ctx context.Context, clients []NewsClient, limit int) ([]Article, error) {
	if len(clients) == 0 {
		return nil, errors.New("no news sources configured")
	}

	var errs []error
	for _, c := range clients {
		articles, err := c.Fetch(ctx, limit)
		if err != nil {
			slog.Warn("news source failed, trying next", "source", c.Name(), "error", err)
			errs = append(errs, err)
			continue
		}

		if len(articles) == 0 {
			slog.Info("news source returned no articles", "source", c.Name())
			continue
		}

		return articles, nil
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, errors.New("no articles from any news source")
}

// Block renders the top n headlines for the report prompt.
type Block struct {
	clients []NewsClient
	top     int
}

func NewBlock(clients []NewsClient, top int) *Block {
	return &Block{clients: clients, top: top}
}

func (b *Block) Name() string {
	return "news"
}

func (b *Block) Fetch(ctx context.Context) (string, error) {
	articles, err := Headlines(ctx, b.clients, max(b.top, 5))
	if err != nil {
		return "", err
	}
	return FormatBlock(articles, b.top), nil
}

func FormatBlock(articles []Article, top int) string {
	lines := []string{"📰 Market news"}
	for i, a := range articles {
		if i == top {
			break
		}
		line := "• " + strings.TrimSpace(a.Headline)
		if a.Publisher != "" {
			line += fmt.Sprintf(" (%s)", a.Publisher)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n\n" + analysisInstruction
}
