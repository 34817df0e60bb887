package main

import (
	"pulsedigest/internal/config"
	"pulsedigest/pkg/market"
	"pulsedigest/pkg/news"
	"pulsedigest/pkg/social"
)

var futuresSymbols = []string{"BTCUSDT", "ETHUSDT"}

// promptSources lists the blocks fed to the model, in prompt order. Sources
// whose API key is missing are left out.
func promptSources(cfg *config.Config) []market.Source {
	s := cfg.Settings
	var sources []market.Source

	var quoteClients []market.QuoteClient
	if cfg.AlphaVantageKey != "" {
		quoteClients = append(quoteClients, market.NewAlphaVantageQuotes(cfg.AlphaVantageKey))
	}
	if cfg.FinnhubKey != "" {
		quoteClients = append(quoteClients, market.NewFinnhubQuotes(cfg.FinnhubKey))
	}
	if len(quoteClients) > 0 {
		sources = append(sources, market.NewIndices(s.Indices, quoteClients...))
	}

	sources = append(sources,
		market.NewCoinGecko(s.Coins, true),
		market.NewFearGreed(),
	)

	if cfg.FREDKey != "" {
		sources = append(sources, market.NewFRED(cfg.FREDKey, market.DefaultCountries))
	}

	sources = append(sources, market.NewDerivatives(cfg.BinanceKey, cfg.BinanceSecret, futuresSymbols))

	if cfg.WhaleKey != "" {
		sources = append(sources, market.NewWhaleAlert(cfg.WhaleKey))
	}

	if newsClients := newsClients(cfg); len(newsClients) > 0 {
		sources = append(sources, news.NewBlock(newsClients, s.NewsTop))
	}

	quoteSources := []social.QuoteSource{social.NewReddit()}
	if cfg.NewsAPIKey != "" {
		quoteSources = append(quoteSources, social.NewNewsAPI(cfg.NewsAPIKey))
	}
	sources = append(sources,
		social.NewQuotes(social.CategoryStock, s.Influencers, quoteSources...),
		social.NewQuotes(social.CategoryCrypto, s.Influencers, quoteSources...),
	)

	return sources
}

func newsClients(cfg *config.Config) []news.NewsClient {
	var clients []news.NewsClient
	if cfg.MarketauxKey != "" {
		clients = append(clients, news.NewMarketauxClient(cfg.MarketauxKey))
	}
	if cfg.MassiveKey != "" {
		clients = append(clients, news.NewMassiveClient(cfg.MassiveKey))
	}
	if cfg.AlphaVantageKey != "" {
		clients = append(clients, news.NewAlphaVantageClient(cfg.AlphaVantageKey))
	}
	if cfg.FinnhubKey != "" {
		clients = append(clients, news.NewFinnHubClient(cfg.FinnhubKey))
	}
	return clients
}
