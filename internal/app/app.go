// Package app wires configuration into the logger, providers and engine
// shared by the commands.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"pricequote/internal/config"
	"pricequote/internal/httpx"
	"pricequote/internal/metrics"
	"pricequote/internal/provider"
	"pricequote/internal/provider/binance"
	"pricequote/internal/provider/coingecko"
	"pricequote/internal/quote"
)

// NewLogger builds the root logger from the log section.
func NewLogger(name string, cfg config.Log) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(cfg.Level),
		JSONFormat: cfg.JSON,
		Output:     os.Stderr,
	})
}

// NewProviders builds the enabled providers in the configured order.
func NewProviders(cfg config.Config, logger hclog.Logger) ([]provider.Provider, error) {
	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	providers := make([]provider.Provider, 0, len(cfg.Engine.Providers))
	for _, name := range cfg.Engine.Providers {
		switch name {
		case "coingecko":
			if !cfg.CoinGecko.Enabled {
				continue
			}
			opts := []coingecko.ClientOption{coingecko.WithHTTPClient(hc.HTTP)}
			if cfg.CoinGecko.Pro {
				opts = append(opts, coingecko.WithPro())
			}
			if cfg.CoinGecko.BaseURL != "" {
				opts = append(opts, coingecko.WithBaseURL(cfg.CoinGecko.BaseURL))
			}
			client, err := coingecko.NewClient(cfg.CoinGecko.APIKey, opts...)
			if err != nil {
				return nil, fmt.Errorf("coingecko client: %w", err)
			}
			providers = append(providers, coingecko.New(coingecko.Config{IDs: cfg.CoinGecko.IDs}, client, logger))

		case "binance":
			if !cfg.Binance.Enabled {
				continue
			}
			providers = append(providers, binance.New(binance.Config{
				BaseURL:        cfg.Binance.BaseURL,
				QuoteAliases:   cfg.Binance.QuoteAliases,
				MaxConcurrency: cfg.Binance.MaxConcurrency,
			}, hc, logger))

		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider enabled")
	}
	return providers, nil
}

// NewEngine builds the quote engine. m may be nil.
func NewEngine(cfg config.Engine, providers []provider.Provider, logger hclog.Logger, m *metrics.Metrics) *quote.Engine {
	opts := []quote.Option{
		quote.WithStrategy(quote.ParseStrategy(cfg.Strategy)),
		quote.WithTTL(cfg.TTL()),
		quote.WithProviderTimeout(cfg.ProviderTimeout()),
		quote.WithCacheMaxItems(cfg.CacheMaxItems),
		quote.WithCoalescing(cfg.Coalesce),
		quote.WithLogger(logger.Named("engine")),
	}
	if m != nil {
		opts = append(opts, quote.WithMetrics(m))
	}
	return quote.New(providers, opts...)
}
