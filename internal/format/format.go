// Package format turns aggregated amounts into the strings printed on reports.
package format

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	thousand = decimal.NewFromInt(1_000)
	lakh     = decimal.NewFromInt(100_000)
	crore    = decimal.NewFromInt(10_000_000)
)

// Amount prints the whole-rupee part of d, truncated toward zero.
func Amount(d decimal.Decimal) string {
	return strconv.FormatInt(d.IntPart(), 10)
}

// Compact shortens an amount with Indian units: 1.5k, 2.3L, 1.1Cr.
// At most one fractional digit is kept and trailing zeros are dropped.
func Compact(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(crore):
		return d.Div(crore).RoundBank(1).String() + "Cr"
	case d.GreaterThanOrEqual(lakh):
		return d.Div(lakh).RoundBank(1).String() + "L"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).RoundBank(1).String() + "k"
	default:
		return Amount(d)
	}
}

// QuantityValue renders "qty (compact value)", or "-" when nothing sold.
func QuantityValue(qty int64, value decimal.Decimal) string {
	if qty == 0 {
		return "-"
	}
	return strconv.FormatInt(qty, 10) + " (" + Compact(value) + ")"
}

// Printer formats grouped figures for one locale.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a printer for the BCP 47 tag. Unknown tags fall back
// to en-IN, the locale the counter runs in.
func NewPrinter(tag string) *Printer {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.MustParse("en-IN")
	}
	return &Printer{p: message.NewPrinter(lang)}
}

// Currency prints d with two decimals, locale grouping and a rupee sign.
func (p *Printer) Currency(d decimal.Decimal) string {
	return "₹" + p.Decimal(d)
}

// Decimal prints d with two decimals and locale grouping. PDF core fonts
// cannot draw the rupee sign, so printed reports use this form.
func (p *Printer) Decimal(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return p.p.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Count prints an integer with locale grouping.
func (p *Printer) Count(n int64) string {
	return p.p.Sprint(number.Decimal(n))
}
