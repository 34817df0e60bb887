package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Reddit struct {
	httpClient *http.Client
}

func NewReddit() *Reddit {
	return &Reddit{httpClient: &http.Client{Timeout: 12 * time.Second}}
}

func (r *Reddit) Name() string {
	return "Reddit"
}

func (r *Reddit) Quotes(ctx context.Context, alias string, since time.Time) ([]string, error) {
	q := url.Values{}
	q.Set("q", strconv.Quote(alias))
	q.Set("sort", "new")
	q.Set("limit", "10")
	q.Set("restrict_sr", "0")
	q.Set("syntax", "plain")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.reddit.com/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit: unexpected status %d", resp.StatusCode)
	}

	var raw struct {
		Data struct {
			Children []struct {
				Data struct {
					Title      string  `json:"title"`
					Selftext   string  `json:"selftext"`
					CreatedUTC float64 `json:"created_utc"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reddit decode: %w", err)
	}

	var out []string
	for _, child := range raw.Data.Children {
		post := child.Data
		if int64(post.CreatedUTC) < since.Unix() {
			continue
		}
		body := post.Selftext
		if body == "" {
			body = post.Title
		}
		if body != "" {
			out = append(out, body)
		}
	}
	return out, nil
}
