package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/types"
)

func testColumns() []types.ColumnSpec {
	return []types.ColumnSpec{
		{Label: "Key", WidthUnits: 100, Kind: types.ColumnKey},
		{Label: "Qty", WidthUnits: 50, Kind: types.ColumnQuantity},
		{Label: "Logs", WidthUnits: 200, Kind: types.ColumnNarrative},
	}
}

func numberedRows(n int) [][]types.CellValue {
	rows := make([][]types.CellValue, n)
	for i := range rows {
		rows[i] = []types.CellValue{types.Text(fmt.Sprintf("row-%03d", i)), types.Int(int64(i)), types.Text("")}
	}
	return rows
}

func newTestRenderer(t *testing.T, rec *Recorder, opts Options) *Renderer {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	opts.Logger = &logger
	r, err := New(rec, DefaultLayout(), testColumns(), opts)
	require.NoError(t, err)
	return r
}

// dataKeys returns the first-column text of every non-bold row on a page.
func dataKeys(rec *Recorder, page int) []string {
	var keys []string
	for _, op := range rec.Cells(page) {
		if op.Box.X == DefaultLayout().MarginLeft && !op.Style.Bold {
			keys = append(keys, op.Text)
		}
	}
	return keys
}

func TestRenderer_EveryRowExactlyOnce(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{Title: "Owner - Outlet", Subtitle: "January 2024"})

	rows := numberedRows(200)
	for _, row := range rows {
		require.NoError(t, r.DrawRow(row))
	}
	require.NoError(t, r.Finalize([]types.CellValue{types.Text("TOTAL"), types.Int(19900), types.Text("")}))

	require.Greater(t, rec.PageCount(), 1)
	assert.Equal(t, rec.PageCount(), r.Stats().Pages)
	assert.Equal(t, 200, r.Stats().Rows)

	seen := map[string]int{}
	for p := 1; p <= rec.PageCount(); p++ {
		for _, k := range dataKeys(rec, p) {
			seen[k]++
		}
	}
	require.Len(t, seen, 200)
	for k, n := range seen {
		assert.Equal(t, 1, n, k)
	}
}

func TestRenderer_RowsStayAboveBottomMargin(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	for i, row := range numberedRows(80) {
		if i%7 == 0 {
			row[2] = types.Text(strings.Repeat("Samsung S24 (8/256) - 1u (Val: 74999)\n", 1+i%5))
		}
		require.NoError(t, r.DrawRow(row))
	}
	require.NoError(t, r.Finalize(nil))

	bottom := DefaultLayout().Bottom()
	for _, op := range rec.Ops {
		if op.Kind == OpCell {
			assert.LessOrEqual(t, op.Box.Y+op.Box.H, bottom+1e-9)
		}
	}
}

func TestRenderer_HeaderRepeatedOnEveryPage(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{Title: "Owner - Outlet"})

	for _, row := range numberedRows(120) {
		require.NoError(t, r.DrawRow(row))
	}
	require.NoError(t, r.Finalize(nil))
	require.Greater(t, rec.PageCount(), 1)
	assert.Equal(t, rec.PageCount(), r.Stats().HeaderDraws)

	first := rec.Cells(1)[:3]
	for p := 1; p <= rec.PageCount(); p++ {
		cells := rec.Cells(p)
		require.GreaterOrEqual(t, len(cells), 3)
		for i := 0; i < 3; i++ {
			assert.True(t, cells[i].Style.Bold, "page %d col %d", p, i)
			assert.True(t, cells[i].Style.Fill, "page %d col %d", p, i)
			assert.Equal(t, first[i].Text, cells[i].Text)
			assert.Equal(t, first[i].Box, cells[i].Box)
		}
	}

	titles := 0
	for _, op := range rec.Ops {
		if op.Kind == OpText && op.Text == "Owner - Outlet" {
			titles++
		}
	}
	assert.Equal(t, rec.PageCount(), titles)
}

func TestRenderer_MeasureRowHeight(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	short := []types.CellValue{types.Text("2024-01-01"), types.Int(1), types.Text("")}
	assert.Equal(t, DefaultLayout().MinRowHeight, r.MeasureRowHeight(short))

	logs := "Apple iPhone 15 (128) - 1u (Val: 80000)\nSamsung S24 (8/256) - 2u (Val: 100000)\nSamsung A15 (4/64) - 1u (Val: 15000)"
	tall := []types.CellValue{types.Text("2024-01-01"), types.Int(4), types.Text(logs)}
	lh := rec.LineHeight(Style{FontSize: DefaultLayout().FontSize})
	assert.InDelta(t, 3*lh+DefaultLayout().RowPadding, r.MeasureRowHeight(tall), 1e-9)
}

func TestRenderer_FinalizedIsTerminal(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	require.NoError(t, r.Finalize(nil))
	assert.ErrorIs(t, r.DrawRow(numberedRows(1)[0]), ErrFinalized)
	assert.ErrorIs(t, r.StartPage(), ErrFinalized)
	assert.ErrorIs(t, r.Finalize(nil), ErrFinalized)
}

func TestRenderer_EmptyTableStillHasHeaderAndTotals(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{Placeholder: "-"})

	require.NoError(t, r.Finalize([]types.CellValue{types.Text("TOTAL"), types.Int(0), types.Text("")}))

	assert.Equal(t, 1, rec.PageCount())
	cells := rec.Cells(1)
	require.Len(t, cells, 6)
	assert.Equal(t, "Key", cells[0].Text)
	assert.Equal(t, "TOTAL", cells[3].Text)
	assert.Equal(t, "0", cells[4].Text)
}

func TestRenderer_RowShapeMismatch(t *testing.T) {
	r := newTestRenderer(t, NewRecorder(), Options{})
	assert.ErrorIs(t, r.DrawRow([]types.CellValue{types.Text("only one")}), ErrRowShape)
}

func TestRenderer_InvalidUTF8RendersEmpty(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	require.NoError(t, r.DrawRow([]types.CellValue{types.Text("ok"), types.Int(1), types.Text("bad \xff\xfe text")}))
	require.NoError(t, r.Finalize(nil))

	cells := rec.Cells(1)
	require.Len(t, cells, 6)
	assert.Equal(t, "ok", cells[3].Text)
	assert.Equal(t, "", cells[5].Text)
	assert.Greater(t, cells[5].Box.W, 0.0)
}

func TestRenderer_RowTallerThanPageIsClipped(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	huge := strings.Repeat("line\n", 500)
	require.NoError(t, r.DrawRow(numberedRows(1)[0]))
	require.NoError(t, r.DrawRow([]types.CellValue{types.Text("huge"), types.Int(1), types.Text(huge)}))
	require.NoError(t, r.DrawRow(numberedRows(2)[1]))
	require.NoError(t, r.Finalize(nil))

	assert.Equal(t, 3, rec.PageCount())
}

func TestNew_LayoutOverflow(t *testing.T) {
	t.Run("too many columns", func(t *testing.T) {
		cols := []types.ColumnSpec{{Label: "Date", WidthUnits: 50}}
		for i := 0; i < 40; i++ {
			cols = append(cols,
				types.ColumnSpec{Label: fmt.Sprintf("B%d Qty", i), WidthUnits: 25},
				types.ColumnSpec{Label: fmt.Sprintf("B%d Val", i), WidthUnits: 45},
			)
		}
		_, err := New(NewRecorder(), DefaultLayout(), cols, Options{})

		var overflow *LayoutOverflowError
		require.ErrorAs(t, err, &overflow)
		assert.NotEmpty(t, overflow.Column)
		assert.Less(t, overflow.Width, overflow.Minimum)
	})

	t.Run("page too short", func(t *testing.T) {
		layout := DefaultLayout()
		layout.PageHeight = 140
		_, err := New(NewRecorder(), layout, testColumns(), Options{})

		var overflow *LayoutOverflowError
		require.ErrorAs(t, err, &overflow)
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := New(NewRecorder(), DefaultLayout(), nil, Options{})

		var overflow *LayoutOverflowError
		require.ErrorAs(t, err, &overflow)
	})
}

func TestFitColumns_ScalesProportionally(t *testing.T) {
	layout := DefaultLayout()
	cols := []types.ColumnSpec{{Label: "A", WidthUnits: 600}, {Label: "B", WidthUnits: 600}}

	widths, scale, err := FitColumns(layout, cols)
	require.NoError(t, err)

	assert.Less(t, scale, 1.0)
	assert.InDelta(t, layout.Printable(), widths[0]+widths[1], 1e-9)
	assert.InDelta(t, widths[0], widths[1], 1e-9)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderer_Serialization(t *testing.T) {
	rec := NewRecorder()
	r := newTestRenderer(t, rec, Options{})

	var buf bytes.Buffer
	assert.ErrorIs(t, r.Render(&buf), ErrNotFinalized)
	assert.Zero(t, buf.Len())

	require.NoError(t, r.DrawRow(numberedRows(1)[0]))
	require.NoError(t, r.Finalize(nil))

	assert.ErrorIs(t, r.Render(failingWriter{}), ErrSerialization)
	require.NoError(t, r.Render(&buf))
	assert.Contains(t, buf.String(), "row-000")
}

func TestRenderPDF(t *testing.T) {
	table := &Table{
		Title:    "Asha - Samsung Hub",
		Subtitle: "January 2024",
		Columns:  testColumns(),
		Rows:     numberedRows(60),
		Totals:   []types.CellValue{types.Text("TOTAL"), types.Int(1770), types.Text("")},
	}

	var buf bytes.Buffer
	stats, err := RenderPDF(table, DefaultLayout(), Options{}, &buf)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, 60, stats.Rows)
	assert.GreaterOrEqual(t, stats.Pages, 2)
}
