package format

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount_Truncates(t *testing.T) {
	assert.Equal(t, "100000", Amount(decimal.NewFromInt(100000)))
	assert.Equal(t, "99999", Amount(decimal.RequireFromString("99999.99")))
	assert.Equal(t, "0", Amount(decimal.Zero))
}

func TestCompact(t *testing.T) {
	cases := map[string]string{
		"999":      "999",
		"1000":     "1k",
		"1500":     "1.5k",
		"100000":   "1L",
		"230000":   "2.3L",
		"10000000": "1Cr",
		"15500000": "1.6Cr",
	}
	for in, want := range cases {
		assert.Equal(t, want, Compact(decimal.RequireFromString(in)), in)
	}
}

func TestQuantityValue(t *testing.T) {
	assert.Equal(t, "-", QuantityValue(0, decimal.Zero))
	assert.Equal(t, "3 (1.8L)", QuantityValue(3, decimal.NewFromInt(180000)))
}

func TestPrinter_Currency(t *testing.T) {
	p := NewPrinter("en-IN")
	got := p.Currency(decimal.NewFromInt(230000))

	assert.True(t, strings.HasPrefix(got, "₹"), got)
	assert.Contains(t, got, "30,000")
	assert.True(t, strings.HasSuffix(got, ".00"), got)
}

func TestNewPrinter_FallsBackOnBadTag(t *testing.T) {
	p := NewPrinter("!!")
	assert.NotEmpty(t, p.Count(1234))
}
