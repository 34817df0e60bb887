package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/report"
	"pulsedigest/pkg/market"
	"pulsedigest/pkg/social"

	"gopkg.in/yaml.v3"
)

// Settings is the editorial part of the configuration, read from a YAML
// file. Fields left out of the file keep their defaults.
type Settings struct {
	Keywords       []report.KeywordTerm `yaml:"keywords"`
	SectionMarkers []string             `yaml:"section_markers"`
	Continuation   string               `yaml:"continuation"`
	Influencers    []social.Influencer  `yaml:"influencers"`
	Indices        []market.Ticker      `yaml:"indices"`
	Coins          []market.Coin        `yaml:"coins"`
	NewsTop        int                  `yaml:"news_top"`
}

func DefaultSettings() Settings {
	return Settings{
		Keywords:       report.DefaultKeywordTerms,
		SectionMarkers: chunk.DefaultSectionMarkers,
		Continuation:   report.DefaultContinuation,
		Influencers:    social.DefaultInfluencers,
		Indices: []market.Ticker{
			{Name: "S&P 500", Symbol: "SPY"},
			{Name: "DAX", Symbol: "DAX"},
			{Name: "NASDAQ", Symbol: "QQQ"},
		},
		Coins: []market.Coin{
			{Symbol: "BTC", ID: "bitcoin"},
			{Symbol: "ETH", ID: "ethereum"},
			{Symbol: "SOL", ID: "solana"},
			{Symbol: "DOGE", ID: "dogecoin"},
		},
		NewsTop: 5,
	}
}

// LoadSettings reads path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	defaults := DefaultSettings()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("settings file not found, using defaults", "path", path)
		return defaults, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if s.Keywords == nil {
		s.Keywords = defaults.Keywords
	}
	if s.SectionMarkers == nil {
		s.SectionMarkers = defaults.SectionMarkers
	}
	if s.Continuation == "" {
		s.Continuation = defaults.Continuation
	}
	if s.Influencers == nil {
		s.Influencers = defaults.Influencers
	}
	if s.Indices == nil {
		s.Indices = defaults.Indices
	}
	if s.Coins == nil {
		s.Coins = defaults.Coins
	}
	if s.NewsTop <= 0 {
		s.NewsTop = defaults.NewsTop
	}
	return s, nil
}
