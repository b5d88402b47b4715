package format

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"pricequote/internal/currency"
)

const (
	// significant digits kept for values below 1
	smallSignificant = 5
	// fraction digits never exceed this
	maxFractionDigits = 20
)

// Options tune how a single value is rendered.
type Options struct {
	// Decimals forces the number of fraction digits. Negative values are
	// treated as zero.
	Decimals *int
	// AlwaysShowSign prefixes "+" to zero and positive values.
	AlwaysShowSign bool
}

// FloorDecimals converts a user-supplied decimals value to a usable count.
func FloorDecimals(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > maxFractionDigits {
		return maxFractionDigits
	}
	return int(math.Floor(v))
}

// Decimals returns a pointer for Options.Decimals.
func Decimals(n int) *int { return &n }

// Number renders value in the quote currency c for locale tag. Fiat
// currencies with a symbol get the symbol as prefix, everything else gets
// the code as suffix. Grouping and rounding work on the absolute value and
// the sign is applied afterwards.
func Number(tag language.Tag, value float64, c currency.Currency, opts Options) string {
	digits := Digits(tag, value, opts)

	if m, ok := currency.MetaOf(c); ok && m.Fiat && m.Symbol != "" {
		sign, abs := splitSign(digits)
		return sign + m.Symbol + abs
	}
	return digits + " " + c.Code()
}

// Digits renders value without any currency marker.
func Digits(tag language.Tag, value float64, opts Options) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "NaN"
	}

	d := decimal.NewFromFloat(value)
	abs := d.Abs()

	places := autoPlaces(abs)
	if opts.Decimals != nil {
		places = max(*opts.Decimals, 0)
	}
	abs = abs.Round(int32(places))
	if opts.Decimals == nil && abs.LessThan(decimal.NewFromInt(1)) {
		places = fractionDigits(abs)
	}

	p := message.NewPrinter(tag)
	out := p.Sprint(number.Decimal(abs.InexactFloat64(),
		number.MinFractionDigits(places),
		number.MaxFractionDigits(places),
	))

	switch {
	case d.IsNegative() && !abs.IsZero():
		return "-" + out
	case opts.AlwaysShowSign:
		return "+" + out
	default:
		return out
	}
}

// Percent renders a decimal factor (0.025) as a percentage with two
// fraction digits ("2.50%").
func Percent(tag language.Tag, factor float64, opts Options) string {
	if opts.Decimals == nil {
		opts.Decimals = Decimals(2)
	}
	return Digits(tag, factor*100, opts) + "%"
}

// autoPlaces picks fraction digits by magnitude: none from 1000 up, two in
// [1, 1000) and enough for smallSignificant digits below 1.
func autoPlaces(abs decimal.Decimal) int {
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return 0
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return 2
	case abs.IsZero():
		return 2
	}

	// position of the leading digit: 0.00123 -> -3
	lead := int(abs.Exponent()) + len(abs.Coefficient().String()) - 1
	places := -lead + smallSignificant - 1
	return min(places, maxFractionDigits)
}

// fractionDigits counts the fraction digits of d after trailing zeros are
// dropped, with a floor of two.
func fractionDigits(d decimal.Decimal) int {
	if d.IsZero() {
		return 2
	}
	n := 0
	if exp := d.Exponent(); exp < 0 {
		n = int(-exp)
	}
	coef := d.Coefficient().String()
	for n > 0 && len(coef) > 0 && coef[len(coef)-1] == '0' {
		coef = coef[:len(coef)-1]
		n--
	}
	return max(n, 2)
}

func splitSign(s string) (string, string) {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		return s[:1], s[1:]
	}
	return "", s
}
