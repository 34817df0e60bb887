package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Fetch(ctx context.Context, limit int) ([]Article, error) {
	res, _, err := c.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub market news: %w", err)
	}

	articles := make([]Article, 0, min(limit, len(res)))
	for _, item := range res {
		if len(articles) == limit {
			break
		}

		a := Article{Source: c.Name()}
		if item.Id != nil {
			a.ExternalID = strconv.FormatInt(*item.Id, 10)
		}
		if item.Headline != nil {
			a.Headline = *item.Headline
		}
		if item.Summary != nil {
			a.Detail = *item.Summary
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0)
		}
		if item.Source != nil {
			a.Publisher = *item.Source
		}
		if item.Related != nil && *item.Related != "" {
			a.Symbols = strings.Split(*item.Related, ",")
		}

		articles = append(articles, a)
	}

	return articles, nil
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}
