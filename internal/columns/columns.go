// =============================================================================
// Sales Report Engine - Column Model Builder
// =============================================================================
//
// Builds the ordered column list of a report in a second, separate pass once
// the Aggregator has settled the category keys. Nothing grows the column list
// while rendering.
//
// LAYOUT:
//   [fixed leading] [per-category specs for every key, in key order] [fixed trailing]
//
// Widths are caller-supplied constants per column kind; content never drives
// width here. Fitting to the page is the renderer's job.
//
// =============================================================================

package columns

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// ErrDuplicateLabel is returned when two columns would share a header.
var ErrDuplicateLabel = errors.New("duplicate column label")

// PerCategory produces the column specs of one category key.
type PerCategory func(key string) []types.ColumnSpec

// Build concatenates leading, per-category and trailing columns.
//
// PARAMETERS:
//   - keys: category keys in the Aggregator's order.
//   - leading, trailing: fixed columns.
//   - perCategory: may be nil when the report has no dynamic columns.
//
// RETURNS:
//   - The column list, or ErrDuplicateLabel.
func Build(keys []string, leading []types.ColumnSpec, perCategory PerCategory, trailing []types.ColumnSpec) ([]types.ColumnSpec, error) {
	out := make([]types.ColumnSpec, 0, len(leading)+2*len(keys)+len(trailing))
	out = append(out, leading...)
	if perCategory != nil {
		for _, k := range keys {
			out = append(out, perCategory(k)...)
		}
	}
	out = append(out, trailing...)

	seen := make(map[string]int, len(out))
	for i, c := range out {
		if j, ok := seen[c.Label]; ok {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateLabel, c.Label, j, i)
		}
		seen[c.Label] = i
	}
	return out, nil
}

// QuantityValue emits "{key} Qty" and "{key} Val" for every key.
func QuantityValue(qtyUnits, valUnits int) PerCategory {
	return func(key string) []types.ColumnSpec {
		return []types.ColumnSpec{
			{Label: key + " Qty", WidthUnits: qtyUnits, Kind: types.ColumnQuantity},
			{Label: key + " Val", WidthUnits: valUnits, Kind: types.ColumnValue},
		}
	}
}

// Single emits one column labelled with the key itself.
func Single(units int, kind types.ColumnKind) PerCategory {
	return func(key string) []types.ColumnSpec {
		return []types.ColumnSpec{{Label: key, WidthUnits: units, Kind: kind}}
	}
}
