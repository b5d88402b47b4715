package provider

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"pricequote/internal/currency"
)

func TestPriceRequest_Pairs_CrossProduct(t *testing.T) {
	t.Parallel()

	req := PriceRequest{
		Sources: []currency.Currency{currency.XEC, currency.BTC},
		Quotes:  []currency.Currency{currency.USD, currency.EUR},
	}

	require.Equal(t, []currency.Pair{
		{Source: currency.XEC, Quote: currency.USD},
		{Source: currency.XEC, Quote: currency.EUR},
		{Source: currency.BTC, Quote: currency.USD},
		{Source: currency.BTC, Quote: currency.EUR},
	}, req.Pairs())
}

func TestPricePoint_Valid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		point PricePoint
		want  bool
	}{
		{"price", PricePoint{Price: Price(1)}, true},
		{"zero price", PricePoint{Price: Price(0)}, true},
		{"error only", PricePoint{Error: "boom"}, false},
		{"price and error", PricePoint{Price: Price(1), Error: "boom"}, false},
		{"neither", PricePoint{}, false},
		{"nan", PricePoint{Price: Price(math.NaN())}, false},
		{"inf", PricePoint{Price: Price(math.Inf(1))}, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.point.Valid(), tc.name)
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Period{"": Period24h, "24H": Period24h, "1d": Period24h, "7d": Period7d, "30d": Period30d} {
		got, err := ParsePeriod(in)
		require.NoError(t, err)
		require.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("1y")
	require.Error(t, err)
	require.Equal(t, "7d", Period7d.String())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("timeout")
	err := NewError("coingecko", "fetch_prices", base)

	require.ErrorIs(t, err, base)
	require.Equal(t, "provider=coingecko op=fetch_prices: timeout", err.Error())
}
