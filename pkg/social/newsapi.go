package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type NewsAPI struct {
	apiKey     string
	httpClient *http.Client
}

func NewNewsAPI(apiKey string) *NewsAPI {
	return &NewsAPI{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 12 * time.Second},
	}
}

func (n *NewsAPI) Name() string {
	return "NewsAPI"
}

func (n *NewsAPI) Quotes(ctx context.Context, alias string, since time.Time) ([]string, error) {
	q := url.Values{}
	q.Set("qInTitle", alias)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", "5")
	q.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://newsapi.org/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi: unexpected status %d", resp.StatusCode)
	}

	var raw struct {
		Articles []struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	var out []string
	for _, a := range raw.Articles {
		// unparseable timestamps are kept
		if published, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil && published.Before(since) {
			continue
		}
		if a.Title != "" {
			out = append(out, a.Title)
		}
	}
	return out, nil
}
