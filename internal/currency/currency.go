package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Currency identifies a tradable asset or fiat currency by its code.
// Two values are equal iff their codes are equal, so a Currency can be
// compared with == and used directly as a map key.
type Currency struct {
	code string
}

// ErrInvalidPair is returned by ParsePair for malformed input.
var ErrInvalidPair = errors.New("invalid pair")

// New returns the Currency for code. Codes are trimmed and upper-cased.
func New(code string) Currency {
	return Currency{code: strings.ToUpper(strings.TrimSpace(code))}
}

// Code returns the upper-case currency code.
func (c Currency) Code() string { return c.code }

func (c Currency) String() string { return c.code }

// IsZero reports whether c was built from an empty code.
func (c Currency) IsZero() bool { return c.code == "" }

func (c Currency) MarshalText() ([]byte, error) { return []byte(c.code), nil }

func (c *Currency) UnmarshalText(b []byte) error {
	*c = New(string(b))
	return nil
}

// Pair is a (source, quote) combination: Source is the asset being priced,
// Quote is the denomination.
type Pair struct {
	Source Currency `json:"source"`
	Quote  Currency `json:"quote"`
}

// NewPair builds a Pair from two codes.
func NewPair(source, quote string) Pair {
	return Pair{Source: New(source), Quote: New(quote)}
}

// String renders the pair as SOURCE:QUOTE.
func (p Pair) String() string { return p.Source.code + ":" + p.Quote.code }

// ParsePair parses SOURCE:QUOTE (also accepts SOURCE/QUOTE).
func ParsePair(s string) (Pair, error) {
	sep := strings.IndexAny(s, ":/")
	if sep <= 0 || sep == len(s)-1 {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPair, s)
	}
	p := NewPair(s[:sep], s[sep+1:])
	if p.Source.IsZero() || p.Quote.IsZero() || strings.ContainsAny(p.Quote.code, ":/") {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPair, s)
	}
	return p, nil
}

// Meta holds display metadata for a currency.
type Meta struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int    `json:"decimals"`
	Fiat     bool   `json:"fiat"`
}

// Well-known fiat currencies.
var (
	USD = New("USD")
	EUR = New("EUR")
	GBP = New("GBP")
	JPY = New("JPY")
	CAD = New("CAD")
	AUD = New("AUD")
	CHF = New("CHF")
	CNY = New("CNY")
	INR = New("INR")
	KWD = New("KWD")
	EGP = New("EGP")
)

// Well-known assets.
var (
	XEC = New("XEC")
	BTC = New("BTC")
	BCH = New("BCH")
	ETH = New("ETH")
)

var registry = buildRegistry()

type registryData struct {
	meta map[Currency]Meta
	fiat []Currency
}

func buildRegistry() registryData {
	meta := map[Currency]Meta{
		USD: {Name: "US Dollar", Symbol: "$", Decimals: 2, Fiat: true},
		EUR: {Name: "Euro", Symbol: "€", Decimals: 2, Fiat: true},
		GBP: {Name: "British Pound", Symbol: "£", Decimals: 2, Fiat: true},
		JPY: {Name: "Japanese Yen", Symbol: "¥", Decimals: 0, Fiat: true},
		CAD: {Name: "Canadian Dollar", Symbol: "C$", Decimals: 2, Fiat: true},
		AUD: {Name: "Australian Dollar", Symbol: "A$", Decimals: 2, Fiat: true},
		CHF: {Name: "Swiss Franc", Symbol: "CHF", Decimals: 2, Fiat: true},
		CNY: {Name: "Chinese Yuan", Symbol: "CN¥", Decimals: 2, Fiat: true},
		INR: {Name: "Indian Rupee", Symbol: "₹", Decimals: 2, Fiat: true},
		KWD: {Name: "Kuwaiti Dinar", Symbol: "KD", Decimals: 3, Fiat: true},
		EGP: {Name: "Egyptian Pound", Symbol: "E£", Decimals: 2, Fiat: true},

		XEC: {Name: "eCash", Decimals: 2},
		BTC: {Name: "Bitcoin", Decimals: 8},
		BCH: {Name: "Bitcoin Cash", Decimals: 8},
		ETH: {Name: "Ether", Decimals: 18},
	}

	fiat := make([]Currency, 0, len(meta))
	for c, m := range meta {
		if m.Fiat {
			fiat = append(fiat, c)
		}
	}
	sort.Slice(fiat, func(i, j int) bool { return fiat[i].code < fiat[j].code })

	return registryData{meta: meta, fiat: fiat}
}

// ListAll returns every registered fiat currency sorted by code.
// The returned slice is a copy.
func ListAll() []Currency {
	out := make([]Currency, len(registry.fiat))
	copy(out, registry.fiat)
	return out
}

// Lookup returns the registered currency for code.
func Lookup(code string) (Currency, bool) {
	c := New(code)
	_, ok := registry.meta[c]
	return c, ok
}

// MustLookup is like Lookup but panics for unknown codes.
func MustLookup(code string) Currency {
	c, ok := Lookup(code)
	if !ok {
		panic(fmt.Sprintf("currency: unknown code %q", code))
	}
	return c
}

// MetaOf returns display metadata for c, if registered.
func MetaOf(c Currency) (Meta, bool) {
	m, ok := registry.meta[c]
	return m, ok
}

// IsFiat reports whether c is a registered fiat currency.
func IsFiat(c Currency) bool {
	m, ok := registry.meta[c]
	return ok && m.Fiat
}
