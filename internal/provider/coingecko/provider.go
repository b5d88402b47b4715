package coingecko

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"pricequote/internal/currency"
	"pricequote/internal/provider"
)

// DefaultIDs maps currency codes to CoinGecko coin ids.
var DefaultIDs = map[string]string{
	"XEC": "ecash",
	"BTC": "bitcoin",
	"BCH": "bitcoin-cash",
	"ETH": "ethereum",
}

var errUnknownAsset = errors.New("no coingecko id for asset")

type Config struct {
	Name string // default: coingecko
	// IDs maps currency codes to coin ids. Entries are merged over DefaultIDs.
	IDs map[string]string
}

// Provider answers price requests with a single /simple/price call.
type Provider struct {
	cfg    Config
	ids    map[string]string
	client *Client
	logger hclog.Logger
}

func New(cfg Config, client *Client, logger hclog.Logger) *Provider {
	if cfg.Name == "" {
		cfg.Name = "coingecko"
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	ids := make(map[string]string, len(DefaultIDs)+len(cfg.IDs))
	for code, id := range DefaultIDs {
		ids[code] = id
	}
	for code, id := range cfg.IDs {
		ids[strings.ToUpper(code)] = id
	}

	return &Provider{cfg: cfg, ids: ids, client: client, logger: logger.Named(cfg.Name)}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) FetchPrices(ctx context.Context, req provider.PriceRequest) (provider.PriceResponse, error) {
	ids := make([]string, 0, len(req.Sources))
	for _, s := range req.Sources {
		if id, ok := p.ids[s.Code()]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return provider.PriceResponse{}, provider.NewError(p.Name(), "fetch_prices", errUnknownAsset)
	}

	vs := make([]string, 0, len(req.Quotes))
	for _, q := range req.Quotes {
		vs = append(vs, q.Code())
	}

	data, err := p.client.GetSimplePrice(ctx, ids, vs, SimplePriceOptions{LastUpdated: true})
	if err != nil {
		return provider.PriceResponse{}, provider.NewError(p.Name(), "fetch_prices", err)
	}

	out := provider.PriceResponse{Prices: make([]provider.PricePoint, 0, len(req.Sources)*len(req.Quotes))}
	for _, pair := range req.Pairs() {
		pt := provider.PricePoint{Source: pair.Source, Quote: pair.Quote, Provider: p.Name()}

		sp, err := p.lookup(data, pair)
		if err != nil {
			pt.Error = err.Error()
		} else {
			pt.Price = sp.Price
			if sp.LastUpdated != nil {
				pt.LastUpdated = *sp.LastUpdated
			}
		}
		out.Prices = append(out.Prices, pt)
	}

	return out, nil
}

// GetStatistics only knows the 24h window; other periods have no data.
func (p *Provider) GetStatistics(ctx context.Context, pair currency.Pair, period provider.Period) (*provider.Statistics, error) {
	if period != provider.Period24h {
		p.logger.Debug("Unsupported statistics period", "period", period.String())
		return nil, nil
	}

	id, ok := p.ids[pair.Source.Code()]
	if !ok {
		return nil, provider.NewError(p.Name(), "get_statistics", fmt.Errorf("%w: %s", errUnknownAsset, pair.Source))
	}

	data, err := p.client.GetSimplePrice(ctx, []string{id}, []string{pair.Quote.Code()}, SimplePriceOptions{
		MarketCap: true,
		Volume24h: true,
		Change24h: true,
	})
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", err)
	}

	sp, err := p.lookup(data, pair)
	if err != nil {
		return nil, provider.NewError(p.Name(), "get_statistics", err)
	}

	stats := &provider.Statistics{
		Source:       pair.Source,
		Quote:        pair.Quote,
		CurrentPrice: *sp.Price,
	}
	if sp.MarketCap != nil {
		stats.MarketCap = *sp.MarketCap
	}
	if sp.Volume24h != nil {
		stats.Volume = *sp.Volume24h
	}
	if sp.Change24h != nil {
		stats.PriceChangePercent = *sp.Change24h / 100
		// price 24h ago = current / (1 + pct)
		if 1+stats.PriceChangePercent != 0 {
			stats.PriceChangeValue = stats.CurrentPrice - stats.CurrentPrice/(1+stats.PriceChangePercent)
		}
	}
	return stats, nil
}

func (p *Provider) lookup(data map[string]map[string]SimplePrice, pair currency.Pair) (SimplePrice, error) {
	id, ok := p.ids[pair.Source.Code()]
	if !ok {
		return SimplePrice{}, fmt.Errorf("%w: %s", errUnknownAsset, pair.Source)
	}
	sp, ok := data[id][strings.ToLower(pair.Quote.Code())]
	if !ok || sp.Price == nil {
		return SimplePrice{}, fmt.Errorf("no %s price for %s", pair.Quote, id)
	}
	return sp, nil
}
