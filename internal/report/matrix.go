package report

import (
	"github.com/ginjaninja78/salesreport/internal/aggregate"
	"github.com/ginjaninja78/salesreport/internal/columns"
	"github.com/ginjaninja78/salesreport/internal/format"
	"github.com/ginjaninja78/salesreport/internal/render"
	"github.com/ginjaninja78/salesreport/internal/segment"
	"github.com/ginjaninja78/salesreport/internal/types"
)

const totalLabel = "TOTAL"

// =============================================================================
// DAILY MATRIX
// =============================================================================

// buildDaily lays out date x brand with per-brand quantity (and value),
// row totals and the two narrative columns.
func buildDaily(records []types.SaleRecord, rc runContext) (*render.Table, error) {
	p := aggregate.Aggregate(records, aggregate.Options{
		RowKey:          aggregate.ByDay(rc.loc),
		ColumnKey:       aggregate.ByBrand(rc.profile.priority()...),
		ColumnOrder:     rc.profile.priority(),
		NormalizeOthers: rc.profile.normalizes(DailyMatrix),
		Narratives:      true,
	})

	pr := rc.profile
	leading := []types.ColumnSpec{{Label: "Date", WidthUnits: pr.width("date", 50), Kind: types.ColumnKey}}
	trailing := totalColumns(pr, rc.mode)
	trailing = append(trailing,
		types.ColumnSpec{Label: "Logs", WidthUnits: pr.width("logs", 200), Kind: types.ColumnNarrative},
		types.ColumnSpec{Label: "Brand Summary", WidthUnits: pr.width("summary", 150), Kind: types.ColumnNarrative},
	)

	cols, err := columns.Build(p.ColumnKeys, leading, perBrand(pr, rc.mode), trailing)
	if err != nil {
		return nil, err
	}

	t := &render.Table{Columns: cols, Facts: facts(p)}
	for _, row := range p.RowKeys {
		cells := []types.CellValue{types.Text(row)}
		for _, col := range p.ColumnKeys {
			cells = append(cells, measureCells(p.Cell(row, col), rc.mode)...)
		}
		cells = append(cells, measureCells(p.RowTotal(row), rc.mode)...)
		cells = append(cells, types.Text(p.Logs(row)), types.Text(p.Summary(row)))
		t.Rows = append(t.Rows, cells)
	}

	t.Totals = []types.CellValue{types.Text(totalLabel)}
	for _, col := range p.ColumnKeys {
		t.Totals = append(t.Totals, measureCells(p.ColumnTotal(col), rc.mode)...)
	}
	t.Totals = append(t.Totals, measureCells(p.GrandTotal(), rc.mode)...)
	t.Totals = append(t.Totals, types.Text(""), types.Text(""))

	if rc.mode == ModeCompact {
		t.Placeholder = "-"
	}
	return t, nil
}

// perBrand returns the per-category column policy for a display mode.
func perBrand(pr Profile, mode Mode) columns.PerCategory {
	switch mode {
	case ModeQuantity:
		return func(key string) []types.ColumnSpec {
			return []types.ColumnSpec{{Label: key + " Qty", WidthUnits: pr.width("qty", 25), Kind: types.ColumnQuantity}}
		}
	case ModeCompact:
		return columns.Single(pr.width("cell", 60), types.ColumnText)
	default:
		return columns.QuantityValue(pr.width("qty", 25), pr.width("val", 45))
	}
}

// totalColumns are the trailing row-total columns for a display mode.
func totalColumns(pr Profile, mode Mode) []types.ColumnSpec {
	switch mode {
	case ModeQuantity:
		return []types.ColumnSpec{{Label: "Total Qty", WidthUnits: pr.width("total_qty", 30), Kind: types.ColumnQuantity}}
	case ModeCompact:
		return []types.ColumnSpec{{Label: "Total", WidthUnits: pr.width("cell", 60), Kind: types.ColumnText}}
	default:
		return []types.ColumnSpec{
			{Label: "Total Qty", WidthUnits: pr.width("total_qty", 30), Kind: types.ColumnQuantity},
			{Label: "Total Val", WidthUnits: pr.width("total_val", 50), Kind: types.ColumnValue},
		}
	}
}

// measureCells renders one Measure as the cells of its column group.
func measureCells(m aggregate.Measure, mode Mode) []types.CellValue {
	switch mode {
	case ModeQuantity:
		return []types.CellValue{types.Int(m.Quantity)}
	case ModeCompact:
		return []types.CellValue{types.Text(format.QuantityValue(m.Quantity, m.Value))}
	default:
		return []types.CellValue{types.Int(m.Quantity), types.Number(m.Value)}
	}
}

// =============================================================================
// SEGMENT MATRIX
// =============================================================================

// buildSegment lays out fixed price band x brand unit volumes. Zero cells
// print "-".
func buildSegment(records []types.SaleRecord, rc runContext) (*render.Table, error) {
	opts := aggregate.Options{
		RowKey:    aggregate.BySegment(segment.FixedBand),
		ColumnKey: aggregate.ByBrand(rc.profile.priority()...),
	}
	if rc.profile.normalizes(SegmentMatrix) {
		opts.ColumnOrder = rc.profile.priority()
		opts.NormalizeOthers = true
	}
	p := aggregate.Aggregate(records, opts)

	pr := rc.profile
	kind, units := types.ColumnQuantity, pr.width("brand", 60)
	if rc.mode == ModeCompact {
		kind = types.ColumnText
	}
	cols, err := columns.Build(p.ColumnKeys,
		[]types.ColumnSpec{{Label: "Segment", WidthUnits: pr.width("segment", 80), Kind: types.ColumnKey}},
		columns.Single(units, kind),
		[]types.ColumnSpec{{Label: "Total", WidthUnits: pr.width("total", 60), Kind: kind}},
	)
	if err != nil {
		return nil, err
	}

	volume := func(m aggregate.Measure) types.CellValue {
		if rc.mode == ModeCompact {
			return types.Text(format.QuantityValue(m.Quantity, m.Value))
		}
		return types.Int(m.Quantity)
	}

	t := &render.Table{
		Columns:           cols,
		Placeholder:       "-",
		ZeroAsPlaceholder: true,
		Facts:             facts(p),
	}
	for _, row := range p.RowKeys {
		cells := []types.CellValue{types.Text(row)}
		for _, col := range p.ColumnKeys {
			cells = append(cells, volume(p.Cell(row, col)))
		}
		cells = append(cells, volume(p.RowTotal(row)))
		t.Rows = append(t.Rows, cells)
	}

	t.Totals = []types.CellValue{types.Text(totalLabel)}
	for _, col := range p.ColumnKeys {
		t.Totals = append(t.Totals, volume(p.ColumnTotal(col)))
	}
	t.Totals = append(t.Totals, volume(p.GrandTotal()))
	return t, nil
}

// facts flattens the nonzero cells of p in row then column order.
func facts(p *aggregate.PivotTable) []render.Fact {
	var out []render.Fact
	for _, row := range p.RowKeys {
		for _, col := range p.ColumnKeys {
			m := p.Cell(row, col)
			if m.IsZero() {
				continue
			}
			out = append(out, render.Fact{Row: row, Column: col, Quantity: m.Quantity, Value: m.Value})
		}
	}
	return out
}
