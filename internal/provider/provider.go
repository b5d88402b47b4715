package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	"pricequote/internal/currency"
)

// PriceRequest asks one provider for the cross-product Sources x Quotes.
type PriceRequest struct {
	Sources []currency.Currency `json:"sources"`
	Quotes  []currency.Currency `json:"quotes"`
}

// Pairs returns the cross-product in source-major order.
func (r PriceRequest) Pairs() []currency.Pair {
	out := make([]currency.Pair, 0, len(r.Sources)*len(r.Quotes))
	for _, s := range r.Sources {
		for _, q := range r.Quotes {
			out = append(out, currency.Pair{Source: s, Quote: q})
		}
	}
	return out
}

// PricePoint is a provider's answer for a single pair. Exactly one of Price
// or Error is meaningful.
type PricePoint struct {
	Source      currency.Currency `json:"source"`
	Quote       currency.Currency `json:"quote"`
	Provider    string            `json:"provider"`
	Price       *float64          `json:"price,omitempty"`
	Error       string            `json:"error,omitempty"`
	LastUpdated time.Time         `json:"last_updated,omitempty"`
}

// Pair returns the (source, quote) of the point.
func (p PricePoint) Pair() currency.Pair {
	return currency.Pair{Source: p.Source, Quote: p.Quote}
}

// Valid reports whether the point carries a finite price and no error.
func (p PricePoint) Valid() bool {
	if p.Error != "" || p.Price == nil {
		return false
	}
	return !math.IsNaN(*p.Price) && !math.IsInf(*p.Price, 0)
}

// PriceResponse is the full answer of a provider to a PriceRequest.
type PriceResponse struct {
	Prices []PricePoint `json:"prices"`
}

// Statistics is a market snapshot for a pair over a Period.
// PriceChangePercent is a decimal factor (0.025 = 2.5%).
type Statistics struct {
	Source             currency.Currency `json:"source"`
	Quote              currency.Currency `json:"quote"`
	CurrentPrice       float64           `json:"current_price"`
	MarketCap          float64           `json:"market_cap"`
	Volume             float64           `json:"volume"`
	PriceChangeValue   float64           `json:"price_change_value"`
	PriceChangePercent float64           `json:"price_change_percent"`
}

// Provider is an upstream source of prices and statistics.
//
//go:generate mockgen -package=quote_test -destination=../quote/mock_provider_test.go -source=provider.go Provider
type Provider interface {
	Name() string
	FetchPrices(ctx context.Context, req PriceRequest) (PriceResponse, error)
	// GetStatistics returns nil, nil when the provider has no data.
	GetStatistics(ctx context.Context, pair currency.Pair, period Period) (*Statistics, error)
}

// Price is a helper for building PricePoints.
func Price(v float64) *float64 { return &v }

// Error annotates a provider failure with the provider name and operation.
type Error struct {
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s op=%s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with provider context.
func NewError(provider, op string, err error) error {
	return &Error{Provider: provider, Op: op, Err: err}
}
