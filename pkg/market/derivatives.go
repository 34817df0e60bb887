package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

// Derivatives reports the global long/short account ratio of Binance USDⓈ-M
// futures for each symbol.
type Derivatives struct {
	client  *futures.Client
	symbols []string
}

func NewDerivatives(apiKey, secretKey string, symbols []string) *Derivatives {
	return &Derivatives{
		client:  futures.NewClient(apiKey, secretKey),
		symbols: symbols,
	}
}

func (d *Derivatives) Name() string {
	return "derivatives"
}

func (d *Derivatives) Fetch(ctx context.Context) (string, error) {
	lines := make([]string, 0, len(d.symbols))
	for _, symbol := range d.symbols {
		lines = append(lines, d.ratioLine(ctx, symbol))
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Derivatives) ratioLine(ctx context.Context, symbol string) string {
	res, err := d.client.NewLongShortRatioService().Symbol(symbol).Period("1h").Limit(1).Do(ctx)
	if err != nil {
		return fmt.Sprintf("⚖️ %s: unavailable (%v)", symbol, err)
	}

	if len(res) == 0 {
		return fmt.Sprintf("⚖️ %s: no data", symbol)
	}

	line, err := formatLongShort(symbol, res[0].LongAccount, res[0].ShortAccount)
	if err != nil {
		return fmt.Sprintf("⚖️ %s: unavailable (%v)", symbol, err)
	}
	return line
}

func formatLongShort(symbol, longAccount, shortAccount string) (string, error) {
	long, err := decimal.NewFromString(longAccount)
	if err != nil {
		return "", fmt.Errorf("long account %q: %w", longAccount, err)
	}

	short, err := decimal.NewFromString(shortAccount)
	if err != nil {
		return "", fmt.Errorf("short account %q: %w", shortAccount, err)
	}

	return fmt.Sprintf("⚖️ %s: longs %s%% / shorts %s%%", symbol,
		long.Mul(hundred).StringFixed(1), short.Mul(hundred).StringFixed(1)), nil
}
