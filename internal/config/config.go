package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. PQ_SERVER_PORT.
// Leaf names come from the field names (split_words), so only the fully
// qualified variable is read.
const EnvPrefix = "PQ"

type Server struct {
	Port              string `json:"port" split_words:"true" validate:"required,numeric"`
	RequestTimeoutSec int    `json:"request_timeout_sec" split_words:"true" validate:"gte=1"`
	// MaxPairs caps the number of pairs accepted by one /api/prices call.
	MaxPairs int `json:"max_pairs" split_words:"true" validate:"gte=1"`
}

type Engine struct {
	Strategy           string `json:"strategy" split_words:"true" validate:"required"`
	TTLSec             int    `json:"ttl_sec" split_words:"true" validate:"gte=0"`
	ProviderTimeoutSec int    `json:"provider_timeout_sec" split_words:"true" validate:"gte=0"`
	Coalesce           bool   `json:"coalesce" split_words:"true"`
	CacheMaxItems      int    `json:"cache_max_items" split_words:"true" validate:"gte=0"`
	// Providers lists provider names in the order they are consulted.
	Providers []string `json:"providers" split_words:"true" validate:"min=1,unique,dive,oneof=coingecko binance"`
}

func (e Engine) TTL() time.Duration { return time.Duration(e.TTLSec) * time.Second }

func (e Engine) ProviderTimeout() time.Duration {
	return time.Duration(e.ProviderTimeoutSec) * time.Second
}

type CoinGecko struct {
	Enabled bool              `json:"enabled" split_words:"true"`
	BaseURL string            `json:"base_url" split_words:"true" validate:"omitempty,url"`
	APIKey  string            `json:"api_key" split_words:"true"`
	// Pro marks APIKey as a paid-plan key.
	Pro bool `json:"pro" split_words:"true"`
	// IDs maps currency codes to CoinGecko coin ids. File only.
	IDs     map[string]string `json:"ids" ignored:"true"`
}

type Binance struct {
	Enabled        bool              `json:"enabled" split_words:"true"`
	BaseURL        string            `json:"base_url" split_words:"true" validate:"omitempty,url"`
	QuoteAliases   map[string]string `json:"quote_aliases" split_words:"true"`
	MaxConcurrency int               `json:"max_concurrency" split_words:"true" validate:"gte=0"`
}

type Log struct {
	Level string `json:"level" split_words:"true" validate:"oneof=trace debug info warn error off"`
	JSON  bool   `json:"json" split_words:"true"`
}

type Metrics struct {
	Enabled bool `json:"enabled" split_words:"true"`
}

type Config struct {
	Server    Server    `json:"server" envconfig:"SERVER"`
	Engine    Engine    `json:"engine" envconfig:"ENGINE"`
	CoinGecko CoinGecko `json:"coingecko" envconfig:"COINGECKO"`
	Binance   Binance   `json:"binance" envconfig:"BINANCE"`
	Log       Log       `json:"log" envconfig:"LOG"`
	Metrics   Metrics   `json:"metrics" envconfig:"METRICS"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15, MaxPairs: 100},
		Engine: Engine{
			Strategy:           "FALLBACK",
			TTLSec:             60,
			ProviderTimeoutSec: 10,
			Providers:          []string{"coingecko", "binance"},
		},
		CoinGecko: CoinGecko{
			Enabled: true,
			BaseURL: "https://api.coingecko.com/api/v3",
		},
		Binance: Binance{
			Enabled:        true,
			BaseURL:        "https://api.binance.com",
			QuoteAliases:   map[string]string{"USD": "USDT"},
			MaxConcurrency: 4,
		},
		Log:     Log{Level: "info"},
		Metrics: Metrics{Enabled: true},
	}
}

// Load builds the configuration from defaults, a JSON file, optional .env
// files and PQ_* environment variables, in increasing precedence, and
// validates the result.
//
// If path is empty, CONFIG_FILE is used, then ./config.json if it exists.
// Without envFiles, ./.env is read when present. Variables already set in
// the environment are never overwritten by .env files.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(envFiles...); err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return cfg, fmt.Errorf("load env file: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every listed provider is
// enabled.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, name := range c.Engine.Providers {
		switch {
		case name == "coingecko" && !c.CoinGecko.Enabled,
			name == "binance" && !c.Binance.Enabled:
			return fmt.Errorf("invalid config: provider %q is listed but disabled", name)
		}
	}
	return nil
}
