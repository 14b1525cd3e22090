package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/aggregate"
	"github.com/ginjaninja78/salesreport/internal/columns"
	"github.com/ginjaninja78/salesreport/internal/format"
	"github.com/ginjaninja78/salesreport/internal/render"
	"github.com/ginjaninja78/salesreport/internal/types"
)

// =============================================================================
// DETAILED LEDGER
// =============================================================================

// buildLedger lists every record newest first. The input is not reordered;
// a copy is sorted.
func buildLedger(records []types.SaleRecord, rc runContext) (*render.Table, error) {
	sorted := append([]types.SaleRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	pr := rc.profile
	cols, err := columns.Build(nil, []types.ColumnSpec{
		{Label: "Date", WidthUnits: pr.width("date", 80), Kind: types.ColumnKey},
		{Label: "Brand", WidthUnits: pr.width("brand", 100), Kind: types.ColumnText},
		{Label: "Model", WidthUnits: pr.width("model", 150), Kind: types.ColumnText},
		{Label: "Variant", WidthUnits: pr.width("variant", 100), Kind: types.ColumnText},
		{Label: "Qty", WidthUnits: pr.width("qty", 50), Kind: types.ColumnQuantity},
		{Label: "Price", WidthUnits: pr.width("price", 80), Kind: types.ColumnValue},
		{Label: "Total", WidthUnits: pr.width("total", 80), Kind: types.ColumnValue},
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	t := &render.Table{Columns: cols}
	var qty int64
	sum := decimal.Zero
	for _, r := range sorted {
		line := r.LineTotal()
		qty += int64(r.Quantity)
		sum = sum.Add(line)
		t.Rows = append(t.Rows, []types.CellValue{
			types.Text(r.Day(rc.loc)),
			types.Text(r.Brand),
			types.Text(r.Model),
			types.Text(r.Variant),
			types.Int(int64(r.Quantity)),
			types.Number(r.UnitPrice),
			types.Number(line),
		})
	}
	t.Totals = []types.CellValue{
		types.Text(totalLabel), types.Empty(), types.Empty(), types.Empty(),
		types.Int(qty), types.Empty(), types.Number(sum),
	}
	return t, nil
}

// =============================================================================
// BRAND PERFORMANCE SUMMARY
// =============================================================================

// buildBrands ranks brands by revenue with a grand total row. Revenue is
// printed with locale grouping.
func buildBrands(records []types.SaleRecord, rc runContext) (*render.Table, error) {
	p := aggregate.Aggregate(records, aggregate.Options{
		RowKey:    aggregate.ByBrand(rc.profile.priority()...),
		ColumnKey: func(types.SaleRecord) string { return "Revenue" },
	})

	brands := append([]string(nil), p.RowKeys...)
	sort.SliceStable(brands, func(i, j int) bool {
		return p.RowTotal(brands[i]).Value.GreaterThan(p.RowTotal(brands[j]).Value)
	})

	pr := rc.profile
	cols, err := columns.Build(nil, []types.ColumnSpec{
		{Label: "Brand", WidthUnits: pr.width("brand", 320), Kind: types.ColumnKey},
		{Label: "Total Units", WidthUnits: pr.width("units", 240), Kind: types.ColumnQuantity},
		{Label: "Total Revenue (Rs.)", WidthUnits: pr.width("revenue", 240), Kind: types.ColumnText},
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	printer := format.NewPrinter(pr.Locale)
	t := &render.Table{Columns: cols, Facts: facts(p)}
	for _, b := range brands {
		m := p.RowTotal(b)
		t.Rows = append(t.Rows, []types.CellValue{
			types.Text(b), types.Int(m.Quantity), types.Text(printer.Decimal(m.Value)),
		})
	}
	g := p.GrandTotal()
	t.Totals = []types.CellValue{
		types.Text("GRAND TOTAL"), types.Int(g.Quantity), types.Text(printer.Decimal(g.Value)),
	}
	return t, nil
}

// =============================================================================
// PERIOD COMPARISON
// =============================================================================

// buildComparison sets MTD against LMTD per brand. Records outside both
// ranges are dropped before aggregation.
func buildComparison(records []types.SaleRecord, rc runContext) (*render.Table, error) {
	mtd, lmtd := rc.comparisonRanges()

	var in []types.SaleRecord
	for _, r := range records {
		if mtd.Contains(r.Timestamp) || lmtd.Contains(r.Timestamp) {
			in = append(in, r)
		}
	}

	p := aggregate.Aggregate(in, aggregate.Options{
		RowKey:      aggregate.ByBrand(rc.profile.priority()...),
		ColumnKey:   aggregate.ByPeriod(mtd, lmtd),
		ColumnOrder: []string{mtd.Label, lmtd.Label},
	})

	// Both periods always get columns, even with no sales in one of them.
	keys := []string{mtd.Label, lmtd.Label}
	pr := rc.profile
	cols, err := columns.Build(keys,
		[]types.ColumnSpec{{Label: "Brand", WidthUnits: pr.width("brand", 60), Kind: types.ColumnKey}},
		columns.QuantityValue(pr.width("qty", 30), pr.width("val", 50)),
		[]types.ColumnSpec{{Label: "Growth %", WidthUnits: pr.width("growth", 40), Kind: types.ColumnText}},
	)
	if err != nil {
		return nil, err
	}

	rows := append([]string(nil), p.RowKeys...)
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i]) < strings.ToLower(rows[j])
	})

	t := &render.Table{Columns: cols, Facts: facts(p)}
	for _, b := range rows {
		cur, prev := p.Cell(b, mtd.Label), p.Cell(b, lmtd.Label)
		t.Rows = append(t.Rows, []types.CellValue{
			types.Text(b),
			types.Int(cur.Quantity), types.Number(cur.Value),
			types.Int(prev.Quantity), types.Number(prev.Value),
			types.Text(growth(cur.Value, prev.Value)),
		})
	}
	cur, prev := p.ColumnTotal(mtd.Label), p.ColumnTotal(lmtd.Label)
	t.Totals = []types.CellValue{
		types.Text(totalLabel),
		types.Int(cur.Quantity), types.Number(cur.Value),
		types.Int(prev.Quantity), types.Number(prev.Value),
		types.Text(growth(cur.Value, prev.Value)),
	}
	return t, nil
}

// growth is the value change of cur over prev in percent, one decimal.
// A zero base prints "-".
func growth(cur, prev decimal.Decimal) string {
	if prev.IsZero() {
		return "-"
	}
	pct := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1)
	if pct.IsPositive() {
		return "+" + pct.StringFixed(1)
	}
	return pct.StringFixed(1)
}
