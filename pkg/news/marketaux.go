package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type MarketauxClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewMarketauxClient(apiKey string) *MarketauxClient {
	return &MarketauxClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *MarketauxClient) Name() string {
	return "Marketaux"
}

func (c *MarketauxClient) Fetch(ctx context.Context, limit int) ([]Article, error) {
	q := url.Values{}
	q.Set("api_token", c.apiKey)
	q.Set("language", "en")
	q.Set("countries", "us,gb,de,cn,jp")
	q.Set("filter_entities", "true")
	q.Set("group_similar", "true")
	q.Set("sort", "published_on")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.marketaux.com/v1/news/all?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketaux fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketaux: unexpected status %d", resp.StatusCode)
	}

	var raw marketauxResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("marketaux decode: %w", err)
	}

	articles := make([]Article, 0, len(raw.Data))
	for _, item := range raw.Data {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		symbols := make([]string, 0, len(item.Entities))
		for _, e := range item.Entities {
			if e.Symbol != "" {
				symbols = append(symbols, e.Symbol)
			}
		}

		articles = append(articles, Article{
			ExternalID:  item.UUID,
			Headline:    item.Title,
			Detail:      item.Description,
			URL:         item.URL,
			Publisher:   item.Source,
			PublishedAt: publishedAt,
			Symbols:     symbols,
			Source:      c.Name(),
		})
	}

	return articles, nil
}

type marketauxResponse struct {
	Data []marketauxArticle `json:"data"`
}

type marketauxArticle struct {
	UUID        string            `json:"uuid"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt string            `json:"published_at"`
	Entities    []marketauxEntity `json:"entities"`
}

type marketauxEntity struct {
	Symbol string `json:"symbol"`
}
