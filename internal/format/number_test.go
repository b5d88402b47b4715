package format_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"pricequote/internal/currency"
	"pricequote/internal/format"
)

func TestNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tag   language.Tag
		value float64
		c     currency.Currency
		opts  format.Options
		want  string
	}{
		{name: "large fiat", tag: language.AmericanEnglish, value: 50000, c: currency.USD, want: "$50,000"},
		{name: "tiny fiat", tag: language.AmericanEnglish, value: 0.00001241, c: currency.USD, want: "$0.00001241"},
		{name: "tiny negative asset", tag: language.AmericanEnglish, value: -1.32515e-10, c: currency.BTC, want: "-0.00000000013252 BTC"},
		{name: "mid fiat", tag: language.AmericanEnglish, value: 12.3456, c: currency.USD, want: "$12.35"},
		{name: "mid negative fiat", tag: language.AmericanEnglish, value: -12.3456, c: currency.USD, want: "-$12.35"},
		{name: "rounds half away from zero", tag: language.AmericanEnglish, value: 1234.5, c: currency.EUR, want: "€1,235"},
		{name: "below one keeps two digits", tag: language.AmericanEnglish, value: 0.5, c: currency.USD, want: "$0.50"},
		{name: "asset code suffix", tag: language.AmericanEnglish, value: 3.25, c: currency.XEC, want: "3.25 XEC"},
		{name: "unknown currency", tag: language.AmericanEnglish, value: 1, c: currency.New("zzz"), want: "1.00 ZZZ"},
		{name: "always show sign", tag: language.AmericanEnglish, value: 0.5, c: currency.USD, opts: format.Options{AlwaysShowSign: true}, want: "+$0.50"},
		{name: "sign on zero", tag: language.AmericanEnglish, value: 0, c: currency.USD, opts: format.Options{AlwaysShowSign: true}, want: "+$0.00"},
		{name: "sign keeps minus", tag: language.AmericanEnglish, value: -2, c: currency.USD, opts: format.Options{AlwaysShowSign: true}, want: "-$2.00"},
		{name: "explicit decimals", tag: language.AmericanEnglish, value: 1.5, c: currency.USD, opts: format.Options{Decimals: format.Decimals(4)}, want: "$1.5000"},
		{name: "negative decimals clamp", tag: language.AmericanEnglish, value: 1.5, c: currency.USD, opts: format.Options{Decimals: format.Decimals(-3)}, want: "$2"},
		{name: "german grouping", tag: language.German, value: 50000.5, c: currency.EUR, opts: format.Options{Decimals: format.Decimals(2)}, want: "€50.000,50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, format.Number(tt.tag, tt.value, tt.c, tt.opts))
		})
	}
}

func TestNumber_SignSymmetry(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{0.000123456, 7.891, 123456.78} {
		pos := format.Number(language.AmericanEnglish, v, currency.BTC, format.Options{})
		neg := format.Number(language.AmericanEnglish, -v, currency.BTC, format.Options{})
		require.Equal(t, "-"+pos, neg)
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	signed := format.Options{AlwaysShowSign: true}
	require.Equal(t, "+2.50%", format.Percent(language.AmericanEnglish, 0.025, signed))
	require.Equal(t, "-3.10%", format.Percent(language.AmericanEnglish, -0.031, signed))
	require.Equal(t, "12.0%", format.Percent(language.AmericanEnglish, 0.12, format.Options{Decimals: format.Decimals(1)}))
}

func TestFloorDecimals(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, format.FloorDecimals(2.7))
	require.Equal(t, 0, format.FloorDecimals(-1))
	require.Equal(t, 0, format.FloorDecimals(math.NaN()))
	require.Equal(t, 20, format.FloorDecimals(99))
}
