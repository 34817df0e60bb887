package market

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	NextHalvingHeight = 1_050_000
	avgBlockMinutes   = 9.5
)

type Halving struct {
	httpClient *http.Client
}

func NewHalving() *Halving {
	return &Halving{httpClient: &http.Client{Timeout: 8 * time.Second}}
}

func (h *Halving) Name() string {
	return "halving"
}

func (h *Halving) Fetch(ctx context.Context) (string, error) {
	height, err := h.tipHeight(ctx)
	if err != nil {
		return "", err
	}
	return FormatHalving(height), nil
}

func (h *Halving) tipHeight(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://blockstream.info/api/blocks/tip/height", nil)
	if err != nil {
		return 0, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("blockstream fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("blockstream: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, fmt.Errorf("blockstream read: %w", err)
	}

	return strconv.Atoi(strings.TrimSpace(string(body)))
}

func FormatHalving(height int) string {
	blocksLeft := max(0, NextHalvingHeight-height)
	days := int(math.Round(float64(blocksLeft) * avgBlockMinutes / (60 * 24)))

	return fmt.Sprintf("⏳ Bitcoin halving in about %d days.\nThe block reward will drop from 3.125 to 1.5625 BTC.", days)
}
