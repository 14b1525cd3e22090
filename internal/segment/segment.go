// =============================================================================
// Sales Report Engine - Segment Classifier
// =============================================================================
//
// Maps a unit price to a price-band label. Two policies exist and the call
// site picks one:
//   - FixedBand:  eight named buckets used by the price-range matrix
//   - Rolling10k: a 10,000-wide band used to tag records at entry time
//
// Both are pure functions. Negative prices are clamped to zero so that a
// malformed record still lands in the lowest bucket.
//
// =============================================================================

package segment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy classifies a unit price.
type Policy func(price decimal.Decimal) string

// Classify calls the policy. It lets Policy satisfy small interfaces.
func (p Policy) Classify(price decimal.Decimal) string {
	return p(price)
}

// band is one fixed bucket. Prices >= Floor belong to it.
type band struct {
	Floor int64
	Label string
}

// fixedBands is ordered from the highest floor down. The last entry catches
// everything below 10000.
var fixedBands = []band{
	{100000, "100K & ABOVE"},
	{70000, "70K - <100K"},
	{40000, "40K - <70K"},
	{30000, "30K - <40K"},
	{20000, "20K - <30K"},
	{15000, "15K - <20K"},
	{10000, "10K - <15K"},
	{0, "<10K"},
}

// FixedBand returns the named bucket for price. Boundary prices resolve to
// the higher bucket.
func FixedBand(price decimal.Decimal) string {
	price = clamp(price)
	for _, b := range fixedBands {
		if price.GreaterThanOrEqual(decimal.NewFromInt(b.Floor)) {
			return b.Label
		}
	}
	return fixedBands[len(fixedBands)-1].Label
}

const bandWidth = 10000

// Band returns the [lower, upper) rolling band containing price.
func Band(price decimal.Decimal) (lower, upper int64) {
	price = clamp(price)
	lower = price.Div(decimal.NewFromInt(bandWidth)).Floor().IntPart() * bandWidth
	return lower, lower + bandWidth
}

// Rolling10k labels price with its rolling band, e.g. 45000 -> "40k-50k".
func Rolling10k(price decimal.Decimal) string {
	lower, upper := Band(price)
	return fmt.Sprintf("%dk-%dk", lower/1000, upper/1000)
}

func clamp(price decimal.Decimal) decimal.Decimal {
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}
