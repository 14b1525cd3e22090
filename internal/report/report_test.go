package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/period"
	"github.com/ginjaninja78/salesreport/internal/render"
	"github.com/ginjaninja78/salesreport/internal/types"
)

func sale(brand, model string, at time.Time, qty int, price string) types.SaleRecord {
	return types.SaleRecord{
		Brand:     brand,
		Model:     model,
		Variant:   "8/128",
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
		Timestamp: at.UnixMilli(),
	}
}

func day(d string, hour int) time.Time {
	t, err := time.ParseInLocation(types.DayLayout, d, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func scenario() []types.SaleRecord {
	return []types.SaleRecord{
		sale("Samsung", "S24", day("2024-01-01", 10), 2, "50000"),
		sale("Apple", "iPhone 15", day("2024-01-01", 11), 1, "80000"),
		sale("Samsung", "S24", day("2024-01-02", 9), 1, "50000"),
	}
}

func display(cells []types.CellValue, t *render.Table) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Display(t.Placeholder, t.ZeroAsPlaceholder)
	}
	return out
}

func labels(t *render.Table) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// =============================================================================
// DAILY MATRIX
// =============================================================================

func TestDaily_ValueModeScenario(t *testing.T) {
	table, err := buildDaily(scenario(), resolve(Options{}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Date", "Samsung Qty", "Samsung Val", "Apple Qty", "Apple Val",
		"Total Qty", "Total Val", "Logs", "Brand Summary",
	}, labels(table))

	require.Len(t, table.Rows, 2)
	row1 := display(table.Rows[0], table)
	row2 := display(table.Rows[1], table)
	assert.Equal(t, "2024-01-01", row1[0])
	assert.Equal(t, []string{"2", "100000", "1", "80000", "3", "180000"}, row1[1:7])
	assert.Equal(t, "2024-01-02", row2[0])
	assert.Equal(t, []string{"1", "50000", "0", "0", "1", "50000"}, row2[1:7])

	totals := display(table.Totals, table)
	assert.Equal(t, "TOTAL", totals[0])
	assert.Equal(t, []string{"3", "150000", "1", "80000", "4", "230000"}, totals[1:7])
	assert.Equal(t, []string{"", ""}, totals[7:])

	assert.Equal(t, "Apple iPhone 15 (8/128) - 1u (Val: 80000)\nSamsung S24 (8/128) - 2u (Val: 100000)", row1[7])
	assert.Equal(t, "Samsung: 2u (100000)\nApple: 1u (80000)", row1[8])
}

func TestDaily_QuantityAndCompactModes(t *testing.T) {
	qty, err := buildDaily(scenario(), resolve(Options{Mode: ModeQuantity}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Samsung Qty", "Apple Qty", "Total Qty", "Logs", "Brand Summary"}, labels(qty))
	assert.Equal(t, []string{"3", "1", "4"}, display(qty.Totals, qty)[1:4])

	compact, err := buildDaily(scenario(), resolve(Options{Mode: ModeCompact}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Samsung", "Apple", "Total", "Logs", "Brand Summary"}, labels(compact))
	assert.Equal(t, []string{"1 (50k)", "-", "1 (50k)"}, display(compact.Rows[1], compact)[1:4])
	assert.Equal(t, "4 (2.3L)", display(compact.Totals, compact)[3])
}

func TestDaily_NormalizesUnknownBrandsToOthers(t *testing.T) {
	records := append(scenario(), sale("Nokia", "G42", day("2024-01-02", 12), 1, "12000"))

	table, err := buildDaily(records, resolve(Options{Profile: DefaultProfile()}))
	require.NoError(t, err)
	assert.Equal(t, "Others Qty", table.Columns[5].Label)

	plain, err := buildDaily(records, resolve(Options{}))
	require.NoError(t, err)
	assert.Equal(t, "Nokia Qty", plain.Columns[5].Label)
}

func TestDaily_BrandMatchingIgnoresCase(t *testing.T) {
	records := append(scenario(), sale("samsung", "A15", day("2024-01-02", 12), 1, "15000"))

	table, err := buildDaily(records, resolve(Options{Profile: DefaultProfile()}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Samsung Qty", "Samsung Val", "Apple Qty", "Apple Val"}, labels(table)[:5])
	assert.NotContains(t, labels(table), "Others Qty")
	assert.Equal(t, []string{totalLabel, "4", "165000", "1", "80000"}, display(table.Totals, table)[:5])
}

// =============================================================================
// SEGMENT MATRIX
// =============================================================================

func TestSegment_BandsAndPlaceholders(t *testing.T) {
	records := []types.SaleRecord{
		sale("Apple", "iPhone 15 Pro", day("2024-01-03", 10), 1, "100000"),
		sale("Samsung", "S24+", day("2024-01-04", 10), 2, "99999.99"),
	}

	table, err := buildSegment(records, resolve(Options{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"Segment", "Apple", "Samsung", "Total"}, labels(table))
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"100K & ABOVE", "1", "-", "1"}, display(table.Rows[0], table))
	assert.Equal(t, []string{"70K - <100K", "-", "2", "2"}, display(table.Rows[1], table))
	assert.Equal(t, []string{"TOTAL", "1", "2", "3"}, display(table.Totals, table))
	assert.Len(t, table.Facts, 2)
}

// =============================================================================
// LEDGER
// =============================================================================

func TestLedger_NewestFirstWithoutMutatingInput(t *testing.T) {
	records := scenario()
	before := append([]types.SaleRecord(nil), records...)

	table, err := buildLedger(records, resolve(Options{}))
	require.NoError(t, err)

	assert.Equal(t, before, records)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"2024-01-02", "Samsung", "S24", "8/128", "1", "50000", "50000"}, display(table.Rows[0], table))
	assert.Equal(t, "Apple", display(table.Rows[1], table)[1])
	assert.Equal(t, []string{"TOTAL", "", "", "", "4", "", "230000"}, display(table.Totals, table))
}

// =============================================================================
// SUPPLEMENTARY VARIANTS
// =============================================================================

func TestBrands_RankedByRevenue(t *testing.T) {
	table, err := buildBrands(scenario(), resolve(Options{}))
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Samsung", display(table.Rows[0], table)[0])
	assert.Equal(t, "3", display(table.Rows[0], table)[1])

	totals := display(table.Totals, table)
	assert.Equal(t, "GRAND TOTAL", totals[0])
	assert.Equal(t, "4", totals[1])
	assert.True(t, strings.HasSuffix(totals[2], "30,000.00"), totals[2])
}

func TestComparison_MTDAgainstLMTD(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	records := []types.SaleRecord{
		sale("Samsung", "A55", day("2024-03-10", 10), 2, "10000"),
		sale("Samsung", "A55", day("2024-02-10", 10), 1, "10000"),
		sale("Apple", "iPhone 13", day("2024-02-20", 10), 1, "50000"),
		sale("Samsung", "A15", day("2024-01-05", 10), 5, "12000"),
	}

	table, err := buildComparison(records, resolve(Options{Now: now}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Brand", "MTD Mar 2024 Qty", "MTD Mar 2024 Val", "LMTD Feb 2024 Qty", "LMTD Feb 2024 Val", "Growth %",
	}, labels(table))
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Samsung", "2", "20000", "1", "10000", "+100.0"}, display(table.Rows[0], table))
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, "-", growth(decimal.NewFromInt(5), decimal.Zero))
	assert.Equal(t, "-50.0", growth(decimal.NewFromInt(5), decimal.NewFromInt(10)))
	assert.Equal(t, "0.0", growth(decimal.NewFromInt(10), decimal.NewFromInt(10)))
}

// =============================================================================
// GENERATE
// =============================================================================

func TestGenerate_AllVariantsOnRecorder(t *testing.T) {
	ctx := testContext(t)
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			rec := render.NewRecorder()
			doc, err := Generate(ctx, v, scenario(), Options{
				Canvas:  rec,
				Profile: Profile{Owner: "Ravi", Outlet: "Samsung Hub"},
				Now:     time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)

			assert.Equal(t, v, doc.Variant)
			assert.Equal(t, PDF, doc.Format)
			assert.Equal(t, rec.PageCount(), doc.PageCount)
			assert.NotEmpty(t, doc.RunID)
			assert.Contains(t, string(doc.Bytes), "Ravi - Samsung Hub")
		})
	}
}

func TestGenerate_EmptyInputStillRenders(t *testing.T) {
	rec := render.NewRecorder()
	doc, err := Generate(testContext(t), DailyMatrix, nil, Options{
		Canvas: rec,
		Now:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageCount)
	assert.Equal(t, 0, doc.Rows)
	assert.Contains(t, string(doc.Bytes), "February 2024")
	assert.Contains(t, string(doc.Bytes), "TOTAL")
}

func TestGenerate_PDFAndSpreadsheet(t *testing.T) {
	ctx := testContext(t)

	pdf, err := Generate(ctx, SegmentMatrix, scenario(), Options{Format: PDF})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Bytes, []byte("%PDF")))
	assert.Equal(t, 1, pdf.PageCount)

	xlsx, err := Generate(ctx, DailyMatrix, scenario(), Options{Format: XLSX})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx.Bytes, []byte("PK")))
	assert.Equal(t, 1, xlsx.PageCount)
}

func TestGenerate_PeriodFiltersRecords(t *testing.T) {
	jan2 := period.MonthRange(2024, time.January, time.UTC)
	records := append(scenario(), sale("Vivo", "V30", day("2024-02-01", 10), 1, "30000"))

	doc, err := Generate(testContext(t), Ledger, records, Options{Canvas: render.NewRecorder(), Period: &jan2})
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Rows)
	assert.Contains(t, string(doc.Bytes), "January 2024")
}

func TestGenerate_Errors(t *testing.T) {
	ctx := testContext(t)

	_, err := Generate(ctx, Variant("weekly"), nil, Options{})
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = Generate(ctx, Ledger, nil, Options{Format: "docx"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Generate(ctx, DailyMatrix, scenario(), Options{
		Canvas: render.NewRecorder(),
		Layout: render.Layout{MinColumnWidth: 500},
	})
	var overflow *render.LayoutOverflowError
	assert.True(t, errors.As(err, &overflow), "got %v", err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Generate(cancelled, Ledger, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse(t *testing.T) {
	v, err := ParseVariant(" Daily ")
	require.NoError(t, err)
	assert.Equal(t, DailyMatrix, v)

	_, err = ParseVariant("weekly")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeValue, m)
	_, err = ParseMode("bogus")
	assert.Error(t, err)
}

func TestProfile_Title(t *testing.T) {
	assert.Equal(t, "Ravi - Samsung Hub", Profile{Owner: "Ravi", Outlet: "Samsung Hub"}.Title("x"))
	assert.Equal(t, "Samsung Hub", Profile{Outlet: "Samsung Hub"}.Title("x"))
	assert.Equal(t, "Daily Sales Report", Profile{}.Title(DailyMatrix.Title()))
}
