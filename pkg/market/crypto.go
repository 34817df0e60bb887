package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CoinGecko struct {
	coins      []Coin
	extended   bool
	httpClient *http.Client
	now        func() time.Time
}

func NewCoinGecko(coins []Coin, extended bool) *CoinGecko {
	return &CoinGecko{
		coins:      coins,
		extended:   extended,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

type cgPrice struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
}

func (c *CoinGecko) Fetch(ctx context.Context) (string, error) {
	ids := make([]string, len(c.coins))
	for i, coin := range c.coins {
		ids[i] = coin.ID
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.coingecko.com/api/v3/simple/price?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coingecko: unexpected status %d", resp.StatusCode)
	}

	var prices map[string]cgPrice
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return "", fmt.Errorf("coingecko decode: %w", err)
	}

	lines := []string{fmt.Sprintf("₿ Crypto on %s", c.now().Format("2006-01-02"))}
	var insights []string
	for _, coin := range c.coins {
		p, ok := prices[coin.ID]
		if !ok {
			continue
		}

		change := decimal.NewFromFloat(p.Change24h)
		emoji := "📉"
		if change.IsPositive() {
			emoji = "📈"
		}
		lines = append(lines, fmt.Sprintf("%s %s: $%s (%s)", emoji, coin.Symbol, formatMoney(decimal.NewFromFloat(p.USD), 0), signedPercent(change)))

		if c.extended {
			if note := moveInsight(coin.Symbol, change); note != "" {
				insights = append(insights, note)
			}
		}
	}

	if len(lines) == 1 {
		return "", fmt.Errorf("coingecko: no prices for %s", strings.Join(ids, ","))
	}

	if len(insights) > 0 {
		lines = append(lines, "", "→ Analysis:")
		lines = append(lines, insights...)
	}
	return strings.Join(lines, "\n"), nil
}

var (
	bigMove  = decimal.NewFromInt(5)
	flatMove = decimal.NewFromInt(1)
)

func moveInsight(symbol string, change decimal.Decimal) string {
	switch abs := change.Abs(); {
	case abs.GreaterThanOrEqual(bigMove):
		direction := "is falling"
		if change.IsPositive() {
			direction = "is rising"
		}
		return fmt.Sprintf("— %s %s by more than 5%%. A reversal or a level breakout is possible.", symbol, direction)
	case abs.LessThan(flatMove):
		return fmt.Sprintf("— %s is barely moving. Possibly accumulation or a flat phase.", symbol)
	}
	return ""
}
