package binance

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pricequote/internal/currency"
	"pricequote/internal/httpx"
	"pricequote/internal/provider"
)

type Config struct {
	Name    string
	BaseURL string
	// QuoteAliases maps a requested quote code to the code listed on the
	// exchange, e.g. USD -> USDT.
	QuoteAliases map[string]string
	// MaxConcurrency limits concurrent ticker requests within one fetch.
	// Defaults to 4 when <= 0.
	MaxConcurrency int
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	logger hclog.Logger
}

func New(cfg Config, hc *httpx.Client, logger hclog.Logger) *Provider {
	if cfg.Name == "" {
		cfg.Name = "binance"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.binance.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.QuoteAliases == nil {
		cfg.QuoteAliases = map[string]string{"USD": "USDT"}
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Provider{cfg: cfg, client: hc, logger: logger.Named(cfg.Name)}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Symbol returns the exchange symbol for pair, e.g. BTCUSDT.
func (p *Provider) Symbol(pair currency.Pair) string {
	quote := pair.Quote.Code()
	if alias := p.cfg.QuoteAliases[quote]; alias != "" {
		quote = strings.ToUpper(alias)
	}
	return pair.Source.Code() + quote
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// FetchPrices requests one ticker per pair. Unlisted pairs become error
// points; the call fails only when nothing could be priced.
func (p *Provider) FetchPrices(ctx context.Context, req provider.PriceRequest) (provider.PriceResponse, error) {
	pairs := req.Pairs()
	points := make([]provider.PricePoint, len(pairs))
	errs := make([]error, len(pairs))

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			pt := provider.PricePoint{Source: pair.Source, Quote: pair.Quote, Provider: p.Name()}

			price, err := p.price(ctx, pair)
			if err != nil {
				errs[i] = err
				pt.Error = err.Error()
			} else {
				pt.Price = provider.Price(price)
				pt.LastUpdated = time.Now().UTC()
			}
			points[i] = pt
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(pairs) > 0 && len(failed) == len(pairs) {
		return provider.PriceResponse{}, provider.NewError(p.Name(), "fetch_prices", errors.Join(failed...))
	}
	if len(failed) > 0 {
		p.logger.Debug("Some tickers failed", "failed", len(failed), "pairs", len(pairs))
	}

	return provider.PriceResponse{Prices: points}, nil
}

func (p *Provider) price(ctx context.Context, pair currency.Pair) (float64, error) {
	u := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", p.cfg.BaseURL, url.QueryEscape(p.Symbol(pair)))

	var t tickerPrice
	if err := p.client.GetJSON(ctx, u, &t); err != nil {
		return 0, err
	}
	return parseNumber(t.Price)
}

// GetStatistics reads the rolling 24h ticker. Market cap is not available
// on the exchange and stays zero.
func (p *Provider) GetStatistics(ctx context.Context, pair currency.Pair, period provider.Period) (*provider.Statistics, error) {
	if period != provider.Period24h {
		return nil, nil
	}

	u := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", p.cfg.BaseURL, url.QueryEscape(p.Symbol(pair)))

	var t ticker24h
	if err := p.client.GetJSON(ctx, u, &t); err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", err)
	}

	last, err := parseNumber(t.LastPrice)
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", fmt.Errorf("lastPrice: %w", err))
	}
	change, err := parseNumber(t.PriceChange)
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", fmt.Errorf("priceChange: %w", err))
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(t.PriceChangePercent))
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", fmt.Errorf("priceChangePercent: %w", err))
	}
	volume, err := parseNumber(t.QuoteVolume)
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", fmt.Errorf("quoteVolume: %w", err))
	}

	return &provider.Statistics{
		Source:             pair.Source,
		Quote:              pair.Quote,
		CurrentPrice:       last,
		Volume:             volume,
		PriceChangeValue:   change,
		PriceChangePercent: pct.Shift(-2).InexactFloat64(),
	}, nil
}

func parseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
