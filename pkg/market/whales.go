package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	whaleMinValue = 500000
	whaleMaxLines = 5
)

type WhaleAlert struct {
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewWhaleAlert(apiKey string) *WhaleAlert {
	return &WhaleAlert{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (c *WhaleAlert) Name() string {
	return "whale_alert"
}

type whaleOwner struct {
	Owner     string `json:"owner"`
	OwnerType string `json:"owner_type"`
}

type whaleTx struct {
	Symbol string      `json:"symbol"`
	Amount float64     `json:"amount"`
	From   *whaleOwner `json:"from"`
	To     *whaleOwner `json:"to"`
}

func (c *WhaleAlert) Fetch(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("min_value", strconv.Itoa(whaleMinValue))
	q.Set("start", strconv.FormatInt(c.now().Add(-24*time.Hour).Unix(), 10))
	q.Set("limit", "20")
	q.Set("currency", "btc,usdt,usdc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.whale-alert.io/v1/transactions?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whale alert fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw struct {
		Transactions []whaleTx `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("whale alert decode: %w", err)
	}

	var lines []string
	for _, tx := range raw.Transactions {
		if line := describeWhaleTx(tx); line != "" {
			lines = append(lines, line)
		}
		if len(lines) == whaleMaxLines {
			break
		}
	}

	if len(lines) == 0 {
		return "🐋 No large transfers in the last 24 hours.", nil
	}
	return strings.Join(lines, "\n"), nil
}

// describeWhaleTx reports exchange withdrawals and deposits; transfers
// between two wallets or two exchanges are not interesting for the digest.
func describeWhaleTx(tx whaleTx) string {
	from := ownerOrEmpty(tx.From)
	to := ownerOrEmpty(tx.To)
	amount := formatMoney(decimal.NewFromFloat(tx.Amount), 0)
	currency := strings.ToUpper(tx.Symbol)

	fromExchange := from.OwnerType == "exchange"
	toExchange := to.OwnerType == "exchange"

	switch {
	case fromExchange && !toExchange:
		return fmt.Sprintf("💸 Withdrawal of %s %s from %s", amount, currency, displayOwner(from))
	case toExchange && !fromExchange:
		return fmt.Sprintf("🐳 Deposit of %s %s to %s", amount, currency, displayOwner(to))
	}
	return ""
}

func ownerOrEmpty(o *whaleOwner) whaleOwner {
	if o == nil {
		return whaleOwner{}
	}
	return *o
}

func displayOwner(o whaleOwner) string {
	name := o.Owner
	if name == "" {
		name = "unknown"
	}

	if o.OwnerType != "exchange" {
		if len(name) > 8 {
			name = name[:8] + "..."
		}
		return fmt.Sprintf("wallet (%s)", name)
	}

	if name == "unknown" {
		return "an unknown exchange"
	}
	return name
}
