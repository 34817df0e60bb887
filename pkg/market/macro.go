package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxSeriesAge drops series whose latest release is older than ~13 months.
const maxSeriesAge = 400 * 24 * time.Hour

// Country lists the FRED series for one economy. An empty Unemployment id
// skips that figure.
type Country struct {
	Flag         string
	CPI          string
	PPI          string
	Rate         string
	Unemployment string
}

var DefaultCountries = []Country{
	{Flag: "🇺🇸", CPI: "CPALTT01USM657N", PPI: "PPIACO", Rate: "FEDFUNDS", Unemployment: "UNRATE"},
	{Flag: "🇪🇺", CPI: "CPALTT01EZM657N", PPI: "PRINTO01EZM661S", Rate: "ECBDFR", Unemployment: "LRHUTTTTEZM156S"},
	{Flag: "🇯🇵", CPI: "CPALTT01JPM657N", PPI: "WPIDEC1JPM661N", Rate: "IRSTCB01JPM156N"},
}

type FRED struct {
	apiKey     string
	countries  []Country
	httpClient *http.Client
	now        func() time.Time
}

func NewFRED(apiKey string, countries []Country) *FRED {
	return &FRED{
		apiKey:     apiKey,
		countries:  countries,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (c *FRED) Name() string {
	return "fred"
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

func (c *FRED) Fetch(ctx context.Context) (string, error) {
	var lines []string
	for _, country := range c.countries {
		cpi, released, err := c.latest(ctx, country.CPI)
		if err != nil {
			slog.Warn("skipping country without CPI", "country", country.Flag, "series", country.CPI, "error", err)
			continue
		}

		ppiPart := "PPI n/a"
		if ppi, err := c.yearOverYear(ctx, country.PPI); err == nil {
			ppiPart = fmt.Sprintf("PPI %s %%", ppi.StringFixed(1))
		}

		ratePart := "Rate n/a"
		if rate, _, err := c.latest(ctx, country.Rate); err == nil {
			ratePart = fmt.Sprintf("Rate %s %%", rate.StringFixed(2))
		}

		unempPart := ""
		if country.Unemployment != "" {
			if unemp, _, err := c.latest(ctx, country.Unemployment); err == nil {
				unempPart = fmt.Sprintf(" | Unemp %s %%", unemp.StringFixed(1))
			}
		}

		lines = append(lines, fmt.Sprintf("%s CPI %s %% | %s | %s%s  (%s)",
			country.Flag, cpi.StringFixed(1), ppiPart, ratePart, unempPart, released.Format("Jan 2006")))
	}

	if len(lines) == 0 {
		return "", errors.New("fred: no country data")
	}

	header := "📊 Macro (CPI: inflation YoY, PPI: producer prices YoY, Rate: central bank rate, Unemp: unemployment)"
	return header + "\n" + strings.Join(lines, "\n"), nil
}

func (c *FRED) latest(ctx context.Context, series string) (decimal.Decimal, time.Time, error) {
	obs, err := c.observations(ctx, series, 1)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}

	released, err := time.Parse(time.DateOnly, obs[0].Date)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("fred %s date %q: %w", series, obs[0].Date, err)
	}

	if c.now().Sub(released) > maxSeriesAge {
		return decimal.Zero, time.Time{}, fmt.Errorf("fred %s: data too old (%s)", series, obs[0].Date)
	}

	v, err := parseObservation(obs[0])
	return v, released, err
}

// yearOverYear compares the latest observation with the one twelve months
// earlier.
func (c *FRED) yearOverYear(ctx context.Context, series string) (decimal.Decimal, error) {
	obs, err := c.observations(ctx, series, 13)
	if err != nil {
		return decimal.Zero, err
	}

	latest, err := parseObservation(obs[0])
	if err != nil {
		return decimal.Zero, err
	}

	prev, err := parseObservation(obs[len(obs)-1])
	if err != nil {
		return decimal.Zero, err
	}

	if prev.IsZero() {
		return decimal.Zero, fmt.Errorf("fred %s: zero base value", series)
	}

	return latest.Div(prev).Sub(decimal.NewFromInt(1)).Mul(hundred), nil
}

func (c *FRED) observations(ctx context.Context, series string, limit int) ([]observation, error) {
	q := url.Values{}
	q.Set("series_id", series)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.stlouisfed.org/fred/series/observations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fred fetch %s: %w", series, err)
	}
	defer resp.Body.Close()

	var raw struct {
		Observations []observation `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fred decode %s: %w", series, err)
	}

	if len(raw.Observations) == 0 {
		return nil, fmt.Errorf("fred %s: no observations", series)
	}
	return raw.Observations, nil
}

func parseObservation(o observation) (decimal.Decimal, error) {
	if o.Value == "" || o.Value == "." {
		return decimal.Zero, fmt.Errorf("missing value for %s", o.Date)
	}
	return decimal.NewFromString(o.Value)
}
