package render

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// Table is the format-agnostic report model shared by the PDF renderer and
// the spreadsheet writer.
type Table struct {
	Title    string
	Subtitle string
	Columns  []types.ColumnSpec
	Rows     [][]types.CellValue

	// Totals is the final bold row. Nil means no totals row.
	Totals []types.CellValue

	Placeholder       string
	ZeroAsPlaceholder bool

	// Facts is the long form of a pivot: one entry per aggregated cell.
	// Spreadsheet output lists them on their own sheet.
	Facts []Fact
}

// Fact is one aggregated (row, column) cell.
type Fact struct {
	Row      string
	Column   string
	Quantity int64
	Value    decimal.Decimal
}

// Draw drives a Renderer through every row of t and finalizes it.
func Draw(r *Renderer, t *Table) error {
	for _, row := range t.Rows {
		if err := r.DrawRow(row); err != nil {
			return err
		}
	}
	return r.Finalize(t.Totals)
}

// RenderPDF lays t out with layout and writes the PDF to w.
func RenderPDF(t *Table, layout Layout, opts Options, w io.Writer) (Stats, error) {
	return RenderOn(NewPDFCanvas(layout), t, layout, opts, w)
}

// RenderOn lays t out on an arbitrary canvas and serializes it to w.
func RenderOn(c Canvas, t *Table, layout Layout, opts Options, w io.Writer) (Stats, error) {
	opts.Title = t.Title
	opts.Subtitle = t.Subtitle
	opts.Placeholder = t.Placeholder
	opts.ZeroAsPlaceholder = t.ZeroAsPlaceholder

	r, err := New(c, layout, t.Columns, opts)
	if err != nil {
		return Stats{}, err
	}
	if err := Draw(r, t); err != nil {
		return r.Stats(), err
	}
	if err := r.Render(w); err != nil {
		return r.Stats(), err
	}
	return r.Stats(), nil
}
