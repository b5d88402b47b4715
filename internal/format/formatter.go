package format

import (
	"context"

	"golang.org/x/text/language"

	"pricequote/internal/currency"
	"pricequote/internal/provider"
	"pricequote/internal/quote"
)

// Quoter is the read side of the quote engine.
//
//go:generate mockgen -package=format_test -destination=mock_quoter_test.go -source=formatter.go Quoter
type Quoter interface {
	Current(ctx context.Context, pair currency.Pair) (float64, bool, error)
	CurrentPairs(ctx context.Context, pairs []currency.Pair) ([]quote.Lookup, error)
	Stats(ctx context.Context, pair currency.Pair, period provider.Period) (*provider.Statistics, error)
}

// Formatter renders engine results as locale-specific strings.
type Formatter struct {
	q   Quoter
	tag language.Tag
}

// New returns a Formatter for the given locale.
func New(q Quoter, tag language.Tag) *Formatter {
	return &Formatter{q: q, tag: tag}
}

// Tag returns the locale.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Price formats the current price of pair. ok is false when the engine has
// no price.
func (f *Formatter) Price(ctx context.Context, pair currency.Pair, opts Options) (string, bool, error) {
	v, found, err := f.q.Current(ctx, pair)
	if err != nil || !found {
		return "", false, err
	}
	return Number(f.tag, v, pair.Quote, opts), true, nil
}

// Formatted is one formatted result; Text is empty when Found is false.
type Formatted struct {
	Pair  currency.Pair `json:"pair"`
	Text  string        `json:"text,omitempty"`
	Found bool          `json:"found"`
}

// Prices formats pairs in input order.
func (f *Formatter) Prices(ctx context.Context, pairs []currency.Pair, opts Options) ([]Formatted, error) {
	res, err := f.q.CurrentPairs(ctx, pairs)
	if err != nil {
		return nil, err
	}

	out := make([]Formatted, len(res))
	for i, l := range res {
		out[i] = Formatted{Pair: l.Pair, Found: l.Found}
		if l.Found {
			out[i].Text = Number(f.tag, l.Price, l.Pair.Quote, opts)
		}
	}
	return out, nil
}

// FormattedStats is Statistics rendered for display.
type FormattedStats struct {
	Pair          currency.Pair `json:"pair"`
	Period        string        `json:"period"`
	Price         string        `json:"price"`
	MarketCap     string        `json:"market_cap"`
	Volume        string        `json:"volume"`
	Change        string        `json:"change"`
	ChangePercent string        `json:"change_percent"`
}

// Stats formats the statistics of pair. It returns nil, nil when no
// provider has any.
func (f *Formatter) Stats(ctx context.Context, pair currency.Pair, period provider.Period) (*FormattedStats, error) {
	s, err := f.q.Stats(ctx, pair, period)
	if err != nil || s == nil {
		return nil, err
	}
	return Stats(f.tag, pair, period, s), nil
}

// Stats renders s for display. Changes always carry a sign; market cap
// and volume have no fraction digits.
func Stats(tag language.Tag, pair currency.Pair, period provider.Period, s *provider.Statistics) *FormattedStats {
	signed := Options{AlwaysShowSign: true}
	whole := Options{Decimals: Decimals(0)}
	return &FormattedStats{
		Pair:          pair,
		Period:        period.String(),
		Price:         Number(tag, s.CurrentPrice, pair.Quote, Options{}),
		MarketCap:     Number(tag, s.MarketCap, pair.Quote, whole),
		Volume:        Number(tag, s.Volume, pair.Quote, whole),
		Change:        Number(tag, s.PriceChangeValue, pair.Quote, signed),
		ChangePercent: Percent(tag, s.PriceChangePercent, signed),
	}
}
