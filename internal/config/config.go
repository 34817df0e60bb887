package config

import (
	"errors"
	"fmt"
	"os"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/retry"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultSendPause = 1500 * time.Millisecond
)

type Config struct {
	TelegramToken string
	ChannelID     string
	ParseMode     string

	LLMProvider  string
	OpenAIKey    string
	AnthropicKey string

	AlphaVantageKey string
	FinnhubKey      string
	MassiveKey      string
	MarketauxKey    string
	FREDKey         string
	WhaleKey        string
	NewsAPIKey      string
	BinanceKey      string
	BinanceSecret   string

	DatabaseURL string
	RedisURL    string
	CacheDir    string

	Chunk           chunk.Config
	Retry           retry.Policy
	SendPause       time.Duration
	NotifyOnFailure bool

	Settings Settings
}

// HTMLMode reports whether messages are sent with Telegram's HTML parse mode.
func (c *Config) HTMLMode() bool {
	return strings.EqualFold(c.ParseMode, "HTML")
}

// Load reads the environment once. Call godotenv.Load before it to pick up
// a .env file.
func Load() (*Config, error) {
	c := &Config{
		TelegramToken:   os.Getenv("TG_TOKEN"),
		ChannelID:       os.Getenv("CHANNEL_ID"),
		ParseMode:       os.Getenv("TG_PARSE_MODE"),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AlphaVantageKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		FinnhubKey:      os.Getenv("FINNHUB_API_KEY"),
		MassiveKey:      os.Getenv("MASSIVE_API_KEY"),
		MarketauxKey:    os.Getenv("MARKETAUX_KEY"),
		FREDKey:         os.Getenv("FRED_KEY"),
		WhaleKey:        os.Getenv("WHALE_KEY"),
		NewsAPIKey:      os.Getenv("NEWSAPI_KEY"),
		BinanceKey:      os.Getenv("BINANCE_API_KEY"),
		BinanceSecret:   os.Getenv("BINANCE_SECRET_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheDir:        getEnv("CACHE_DIR", "cache"),
		Chunk:           chunk.DefaultConfig(),
		Retry:           retry.DefaultPolicy(),
		SendPause:       defaultSendPause,
	}

	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TG_TOKEN is required"))
	}
	if c.ChannelID == "" {
		errs = append(errs, errors.New("CHANNEL_ID is required"))
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}

	intVar(&errs, "CHUNK_BUDGET_BYTES", &c.Chunk.Budget)
	intVar(&errs, "CHUNK_HARD_LIMIT_BYTES", &c.Chunk.HardLimit)
	intVar(&errs, "CHUNK_MARKER_HEADROOM", &c.Chunk.MarkerHeadroom)
	if label := os.Getenv("CHUNK_MARKER_LABEL"); label != "" {
		c.Chunk.Label = label
	}

	intVar(&errs, "RETRY_MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	durationVar(&errs, "RETRY_DELAY", &c.Retry.Delay)
	durationVar(&errs, "SEND_PAUSE", &c.SendPause)

	if v := os.Getenv("NOTIFY_ON_FAILURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("NOTIFY_ON_FAILURE: %w", err))
		}
		c.NotifyOnFailure = b
	}

	settings, err := LoadSettings(getEnv("SETTINGS_FILE", "settings.yaml"))
	if err != nil {
		errs = append(errs, err)
	}
	c.Settings = settings
	c.Chunk.SectionMarkers = settings.SectionMarkers

	if err := c.Chunk.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("RETRY_MAX_ATTEMPTS must be at least 1"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intVar(errs *[]error, key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

// durationVar accepts Go durations ("1.5s") or plain seconds ("5").
func durationVar(errs *[]error, key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
