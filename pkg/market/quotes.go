package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/shopspring/decimal"
)

type Quote struct {
	Symbol        string
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
}

type QuoteClient interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	Name() string
}

type AlphaVantageQuotes struct {
	apiKey     string
	httpClient *http.Client
}

func NewAlphaVantageQuotes(apiKey string) *AlphaVantageQuotes {
	return &AlphaVantageQuotes{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *AlphaVantageQuotes) Name() string {
	return "AlphaVantage"
}

type avGlobalQuote struct {
	Quote struct {
		Price         string `json:"05. price"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

func (c *AlphaVantageQuotes) Quote(ctx context.Context, symbol string) (*Quote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.alphavantage.co/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote: %w", err)
	}
	defer resp.Body.Close()

	var raw avGlobalQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	if raw.Quote.Price == "" {
		return nil, fmt.Errorf("alphavantage: no quote for %s", symbol)
	}

	price, err := decimal.NewFromString(raw.Quote.Price)
	if err != nil {
		return nil, fmt.Errorf("alphavantage price %q: %w", raw.Quote.Price, err)
	}

	change, err := decimal.NewFromString(strings.TrimSuffix(raw.Quote.ChangePercent, "%"))
	if err != nil {
		return nil, fmt.Errorf("alphavantage change %q: %w", raw.Quote.ChangePercent, err)
	}

	return &Quote{Symbol: symbol, Price: price, ChangePercent: change}, nil
}

type FinnhubQuotes struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubQuotes(apiKey string) *FinnhubQuotes {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &FinnhubQuotes{client: finnhub.NewAPIClient(cfg).DefaultApi}
}

func (c *FinnhubQuotes) Name() string {
	return "Finnhub"
}

func (c *FinnhubQuotes) Quote(ctx context.Context, symbol string) (*Quote, error) {
	res, _, err := c.client.Quote(ctx).Symbol(symbol).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub quote: %w", err)
	}

	if res.C == nil || *res.C == 0 {
		return nil, fmt.Errorf("finnhub: no quote for %s", symbol)
	}

	q := &Quote{Symbol: symbol, Price: decimal.NewFromFloat32(*res.C)}
	if res.Dp != nil {
		q.ChangePercent = decimal.NewFromFloat32(*res.Dp)
	}
	return q, nil
}

// Indices renders the index block, asking each QuoteClient in order until
// one answers for a ticker.
type Indices struct {
	tickers []Ticker
	clients []QuoteClient
}

func NewIndices(tickers []Ticker, clients ...QuoteClient) *Indices {
	return &Indices{tickers: tickers, clients: clients}
}

func (s *Indices) Name() string {
	return "indices"
}

func (s *Indices) Fetch(ctx context.Context) (string, error) {
	if len(s.clients) == 0 {
		return "", errors.New("no quote clients configured")
	}

	lines := []string{"📊 Indices"}
	found := 0
	for _, t := range s.tickers {
		q, err := s.quote(ctx, t.Symbol)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: unavailable", t.Name))
			continue
		}
		found++
		lines = append(lines, fmt.Sprintf("%s: $%s (%s)", t.Name, formatMoney(q.Price, 0), signedPercent(q.ChangePercent)))
	}

	if found == 0 {
		return "", errors.New("no index quotes available")
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Indices) quote(ctx context.Context, symbol string) (*Quote, error) {
	var errs []error
	for _, c := range s.clients {
		q, err := c.Quote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		slog.Warn("quote source failed, trying next", "source", c.Name(), "symbol", symbol, "error", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
