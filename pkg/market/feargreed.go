package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const userAgent = "PulseDigest/1.0"

var fearGreedExplanations = map[string]string{
	"Extreme Fear":  "investors are panicking, good entry points are possible",
	"Fear":          "the market is cautious, a correction is possible",
	"Neutral":       "sentiment is balanced",
	"Greed":         "investors are active, the market may be overbought",
	"Extreme Greed": "the market is overheated, a correction is likely",
}

type FearGreed struct {
	httpClient *http.Client
}

func NewFearGreed() *FearGreed {
	return &FearGreed{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *FearGreed) Name() string {
	return "fear_greed"
}

type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
	} `json:"data"`
}

func (c *FearGreed) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.alternative.me/fng/?limit=1", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fear and greed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fear and greed: unexpected status %d", resp.StatusCode)
	}

	var raw fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("fear and greed decode: %w", err)
	}

	if len(raw.Data) == 0 {
		return "", errors.New("fear and greed: empty response")
	}

	value, err := strconv.Atoi(raw.Data[0].Value)
	if err != nil {
		return "", fmt.Errorf("fear and greed value %q: %w", raw.Data[0].Value, err)
	}

	return FormatFearGreed(value, raw.Data[0].Classification), nil
}

func FormatFearGreed(value int, label string) string {
	explanation, ok := fearGreedExplanations[label]
	if !ok {
		explanation = "sentiment is unclear"
	}

	emoji := "🟢"
	switch {
	case value <= 25:
		emoji = "🔴"
	case value <= 50:
		emoji = "🟡"
	}

	return fmt.Sprintf("%s Fear & Greed Index: %d (%s): %s.", emoji, value, label, explanation)
}
