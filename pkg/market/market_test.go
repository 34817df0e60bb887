package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"61234.5", 0, "61,235"},
		{"999", 0, "999"},
		{"1000", 0, "1,000"},
		{"1234567.891", 2, "1,234,567.89"},
		{"-2500.4", 0, "-2,500"},
		{"0.2", 0, "0"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		assert.Equal(t, tt.want, formatMoney(d, tt.places))
	}
}

func TestSignedPercent(t *testing.T) {
	assert.Equal(t, "+1.23%", signedPercent(decimal.RequireFromString("1.234")))
	assert.Equal(t, "-0.50%", signedPercent(decimal.RequireFromString("-0.5")))
	assert.Equal(t, "+0.00%", signedPercent(decimal.Zero))
}

func TestMoveInsight(t *testing.T) {
	assert.Equal(t, "— BTC is rising by more than 5%. A reversal or a level breakout is possible.", moveInsight("BTC", decimal.NewFromFloat(6.1)))
	assert.Equal(t, "— SOL is falling by more than 5%. A reversal or a level breakout is possible.", moveInsight("SOL", decimal.NewFromFloat(-5)))
	assert.Equal(t, "— ETH is barely moving. Possibly accumulation or a flat phase.", moveInsight("ETH", decimal.NewFromFloat(-0.3)))
	assert.Equal(t, "", moveInsight("DOGE", decimal.NewFromFloat(2.5)))
}

func TestFormatFearGreed(t *testing.T) {
	assert.Equal(t, "🔴 Fear & Greed Index: 20 (Extreme Fear): investors are panicking, good entry points are possible.", FormatFearGreed(20, "Extreme Fear"))
	assert.Equal(t, "🟡 Fear & Greed Index: 50 (Neutral): sentiment is balanced.", FormatFearGreed(50, "Neutral"))
	assert.Equal(t, "🟢 Fear & Greed Index: 51 (Odd): sentiment is unclear.", FormatFearGreed(51, "Odd"))
}

func TestFormatHalving(t *testing.T) {
	got := FormatHalving(1_000_000)
	assert.Equal(t, true, strings.HasPrefix(got, "⏳ Bitcoin halving in about 330 days."))

	got = FormatHalving(NextHalvingHeight + 10)
	assert.Equal(t, true, strings.HasPrefix(got, "⏳ Bitcoin halving in about 0 days."))
}

func TestFormatLongShort(t *testing.T) {
	got, err := formatLongShort("BTCUSDT", "0.6512", "0.3488")
	assert.Equal(t, nil, err)
	assert.Equal(t, "⚖️ BTCUSDT: longs 65.1% / shorts 34.9%", got)

	_, err = formatLongShort("BTCUSDT", "n/a", "0.3")
	assert.NotEqual(t, nil, err)
}

func TestDescribeWhaleTx(t *testing.T) {
	tests := []struct {
		name string
		tx   whaleTx
		want string
	}{
		{
			name: "withdrawal from named exchange",
			tx: whaleTx{Symbol: "btc", Amount: 1500,
				From: &whaleOwner{Owner: "binance", OwnerType: "exchange"},
				To:   &whaleOwner{Owner: "bc1qxyz0123456789", OwnerType: "unknown"}},
			want: "💸 Withdrawal of 1,500 BTC from binance",
		},
		{
			name: "deposit to unknown exchange",
			tx: whaleTx{Symbol: "usdt", Amount: 25000000,
				From: &whaleOwner{Owner: "0xabcdef0123456", OwnerType: "unknown"},
				To:   &whaleOwner{Owner: "unknown", OwnerType: "exchange"}},
			want: "🐳 Deposit of 25,000,000 USDT to an unknown exchange",
		},
		{
			name: "exchange to exchange is skipped",
			tx: whaleTx{Symbol: "usdc", Amount: 1,
				From: &whaleOwner{OwnerType: "exchange"},
				To:   &whaleOwner{OwnerType: "exchange"}},
			want: "",
		},
		{
			name: "missing owners",
			tx:   whaleTx{Symbol: "btc", Amount: 1},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeWhaleTx(tt.tx))
		})
	}
}

type fakeQuotes struct {
	name   string
	quotes map[string]*Quote
}

func (f *fakeQuotes) Name() string { return f.name }

func (f *fakeQuotes) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, errors.New("no quote")
}

func TestIndicesFallsBack(t *testing.T) {
	primary := &fakeQuotes{name: "primary", quotes: map[string]*Quote{
		"SPY": {Symbol: "SPY", Price: decimal.NewFromFloat(512.4), ChangePercent: decimal.NewFromFloat(0.45)},
	}}
	fallback := &fakeQuotes{name: "fallback", quotes: map[string]*Quote{
		"QQQ": {Symbol: "QQQ", Price: decimal.NewFromFloat(440), ChangePercent: decimal.NewFromFloat(-1.2)},
	}}

	s := NewIndices([]Ticker{{"S&P 500", "SPY"}, {"NASDAQ", "QQQ"}, {"DAX", "DAX"}}, primary, fallback)
	got, err := s.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, "📊 Indices\nS&P 500: $512 (+0.45%)\nNASDAQ: $440 (-1.20%)\nDAX: unavailable", got)
}

func TestIndicesAllFail(t *testing.T) {
	s := NewIndices([]Ticker{{"DAX", "DAX"}}, &fakeQuotes{name: "empty"})
	_, err := s.Fetch(context.Background())
	assert.NotEqual(t, nil, err)
}

func TestAlphaVantageQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"Global Quote":{"01. symbol":"SPY","05. price":"512.3400","10. change percent":"0.4512%"}}`))
	}))
	defer srv.Close()

	c := NewAlphaVantageQuotes("test-key")
	c.httpClient = srv.Client()
	c.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	q, err := c.Quote(context.Background(), "SPY")

	assert.Equal(t, nil, err)
	assert.Equal(t, "512.34", q.Price.String())
	assert.Equal(t, "0.4512", q.ChangePercent.String())
}

func TestAlphaVantageQuoteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage!"}`))
	}))
	defer srv.Close()

	c := NewAlphaVantageQuotes("test-key")
	c.httpClient = srv.Client()
	c.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	_, err := c.Quote(context.Background(), "SPY")
	assert.NotEqual(t, nil, err)
}

func TestCoinGeckoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bitcoin":  map[string]float64{"usd": 64210.7, "usd_24h_change": 6.2},
			"ethereum": map[string]float64{"usd": 3120, "usd_24h_change": -0.4},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko([]Coin{{"BTC", "bitcoin"}, {"ETH", "ethereum"}}, true)
	c.httpClient = srv.Client()
	c.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}
	c.now = func() time.Time { return time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC) }

	got, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	want := strings.Join([]string{
		"₿ Crypto on 2025-06-09",
		"📈 BTC: $64,211 (+6.20%)",
		"📉 ETH: $3,120 (-0.40%)",
		"",
		"→ Analysis:",
		"— BTC is rising by more than 5%. A reversal or a level breakout is possible.",
		"— ETH is barely moving. Possibly accumulation or a flat phase.",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFREDFetch(t *testing.T) {
	series := map[string][]observation{
		"CPI_US":   {{Date: "2025-01-01", Value: "3.0"}},
		"PPI_US":   append([]observation{{Date: "2025-01-01", Value: "110"}}, repeatObs("100", 12)...),
		"RATE_US":  {{Date: "2025-02-01", Value: "4.33"}},
		"UNEMP_US": {{Date: "2025-02-01", Value: "."}},
		"CPI_OLD":  {{Date: "2020-01-01", Value: "1.0"}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		obs, ok := series[r.URL.Query().Get("series_id")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_message":"bad series"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"observations": obs})
	}))
	defer srv.Close()

	c := NewFRED("test-key", []Country{
		{Flag: "🇺🇸", CPI: "CPI_US", PPI: "PPI_US", Rate: "RATE_US", Unemployment: "UNEMP_US"},
		{Flag: "🇯🇵", CPI: "CPI_OLD", PPI: "MISSING", Rate: "MISSING"},
	})
	c.httpClient = srv.Client()
	c.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}
	c.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	got, err := c.Fetch(context.Background())

	assert.Equal(t, nil, err)
	lines := strings.Split(got, "\n")
	assert.Equal(t, 2, len(lines))
	assert.Equal(t, "🇺🇸 CPI 3.0 % | PPI 10.0 % | Rate 4.33 %  (Jan 2025)", lines[1])
}

func repeatObs(value string, n int) []observation {
	out := make([]observation, n)
	for i := range out {
		out[i] = observation{Date: "2024-01-01", Value: value}
	}
	return out
}

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}
