package segment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedBand_Boundaries(t *testing.T) {
	cases := []struct {
		price string
		want  string
	}{
		{"0", "<10K"},
		{"9999.99", "<10K"},
		{"10000", "10K - <15K"},
		{"14999", "10K - <15K"},
		{"15000", "15K - <20K"},
		{"20000", "20K - <30K"},
		{"30000", "30K - <40K"},
		{"40000", "40K - <70K"},
		{"69999.99", "40K - <70K"},
		{"70000", "70K - <100K"},
		{"99999.99", "70K - <100K"},
		{"100000", "100K & ABOVE"},
		{"250000", "100K & ABOVE"},
		{"-5", "<10K"},
	}

	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			assert.Equal(t, tc.want, FixedBand(decimal.RequireFromString(tc.price)))
		})
	}
}

func TestFixedBand_AssignsExactlyOneKnownLabel(t *testing.T) {
	var labels []string
	for _, b := range fixedBands {
		labels = append(labels, b.Label)
	}
	require.Len(t, labels, 8)

	for p := int64(0); p <= 150000; p += 2500 {
		got := FixedBand(decimal.NewFromInt(p))
		assert.Contains(t, labels, got, "price %d", p)
	}
}

func TestRolling10k(t *testing.T) {
	cases := []struct {
		price string
		want  string
	}{
		{"0", "0k-10k"},
		{"9999.99", "0k-10k"},
		{"10000", "10k-20k"},
		{"45000", "40k-50k"},
		{"100000", "100k-110k"},
		{"123456.78", "120k-130k"},
	}

	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			assert.Equal(t, tc.want, Rolling10k(decimal.RequireFromString(tc.price)))
		})
	}
}

func TestBand_ContainsPrice(t *testing.T) {
	for _, s := range []string{"0", "1", "9999.5", "10000", "55555.55", "99999.99", "100000"} {
		price := decimal.RequireFromString(s)
		lower, upper := Band(price)

		assert.Equal(t, int64(10000), upper-lower)
		assert.True(t, price.GreaterThanOrEqual(decimal.NewFromInt(lower)), s)
		assert.True(t, price.LessThan(decimal.NewFromInt(upper)), s)
	}
}

func TestPolicy_Classify(t *testing.T) {
	var p Policy = FixedBand
	assert.Equal(t, "100K & ABOVE", p.Classify(decimal.NewFromInt(100000)))
}
