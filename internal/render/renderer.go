// =============================================================================
// Sales Report Engine - Paginated Table Renderer
// =============================================================================
//
// Lays a header row, data rows and a totals row onto fixed-size pages.
//
// STATE MACHINE (one Renderer per document):
//   AwaitingPage --StartPage--> HeaderDrawn --DrawRow--> RowsDrawn(n)
//   RowsDrawn(n) --DrawRow--> RowsDrawn(n+1)
//   any non-final state --Finalize--> Finalized (terminal)
//
// PAGE-BREAK RULE:
//   Evaluated before every row, because row heights vary:
//     cursorY + rowHeight > pageHeight - bottomMargin
//   starts a new page, redraws the title block and the bold header row, and
//   then draws the pending row.
//
// ROW HEIGHT:
//   max(minRowHeight, tallest wrapped cell text + rowPadding)
//   Narrative columns (logs, brand summary) therefore grow their rows.
//
// =============================================================================

package render

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/salesreport/internal/types"
)

type state int

const (
	awaitingPage state = iota
	headerDrawn
	rowsDrawn
	finalized
)

func (s state) String() string {
	switch s {
	case awaitingPage:
		return "awaiting_page"
	case headerDrawn:
		return "header_drawn"
	case rowsDrawn:
		return "rows_drawn"
	default:
		return "finalized"
	}
}

// Options carries the per-document text settings.
type Options struct {
	// Title and Subtitle form the title block repeated on every page.
	Title    string
	Subtitle string

	// Placeholder is drawn for empty cells; with ZeroAsPlaceholder it also
	// replaces numeric zeros.
	Placeholder       string
	ZeroAsPlaceholder bool

	Logger *zerolog.Logger
}

// Stats summarizes a finished render.
type Stats struct {
	Pages       int
	Rows        int
	HeaderDraws int
}

// Renderer draws one table document onto a Canvas.
type Renderer struct {
	canvas  Canvas
	layout  Layout
	columns []types.ColumnSpec
	widths  []float64
	opts    Options
	log     zerolog.Logger

	body   Style
	bold   Style
	header Style

	headerLines  [][]string
	headerHeight float64

	state      state
	cursorY    float64
	rowsOnPage int
	stats      Stats
}

// New validates the layout against the columns and returns a Renderer in
// the AwaitingPage state. Configuration problems are reported here, before
// anything is drawn, as *LayoutOverflowError.
func New(canvas Canvas, layout Layout, cols []types.ColumnSpec, opts Options) (*Renderer, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}

	widths, scale, err := FitColumns(layout, cols)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if scale < 1 {
		log.Debug().Float64("scale", scale).Int("columns", len(cols)).Msg("columns scaled to printable width")
	}

	r := &Renderer{
		canvas:  canvas,
		layout:  layout,
		columns: append([]types.ColumnSpec(nil), cols...),
		widths:  widths,
		opts:    opts,
		log:     log,
		body:    Style{FontSize: layout.FontSize},
		bold:    Style{FontSize: layout.FontSize, Bold: true},
		header:  Style{FontSize: layout.FontSize, Bold: true, Fill: true},
	}

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	r.headerLines, r.headerHeight = r.measure(labels, r.header, layout.HeaderMinHeight)

	minRow := layout.MinRowHeight
	if minRow <= 0 {
		minRow = canvas.LineHeight(r.body) + layout.RowPadding
	}
	if layout.MarginTop+r.headerHeight+minRow > layout.Bottom() {
		return nil, &LayoutOverflowError{
			Reason: fmt.Sprintf("page height %.0fpt cannot fit the %.1fpt header and one row", layout.PageHeight, r.headerHeight),
		}
	}

	return r, nil
}

// Stats returns the counters so far.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// StartPage begins a new page: title block, then the bold header row.
func (r *Renderer) StartPage() error {
	if r.state == finalized {
		return ErrFinalized
	}

	r.canvas.AddPage()
	r.stats.Pages++

	if r.opts.Title != "" {
		r.canvas.DrawCentered(r.layout.TitleY, r.opts.Title, Style{FontSize: r.layout.TitleFontSize, Bold: true})
	}
	if r.opts.Subtitle != "" {
		r.canvas.DrawCentered(r.layout.SubtitleY, r.opts.Subtitle, Style{FontSize: r.layout.SubtitleFontSize})
	}

	r.cursorY = r.layout.MarginTop
	r.drawGrid(r.headerLines, r.headerHeight, r.header)
	r.stats.HeaderDraws++
	r.rowsOnPage = 0
	r.state = headerDrawn
	return nil
}

// MeasureRowHeight returns the height DrawRow would use for values.
func (r *Renderer) MeasureRowHeight(values []types.CellValue) float64 {
	if len(values) != len(r.columns) {
		return 0
	}
	_, h := r.measure(r.display(values), r.body, r.layout.MinRowHeight)
	return h
}

// DrawRow draws one data row, breaking the page first when it would not fit.
func (r *Renderer) DrawRow(values []types.CellValue) error {
	return r.drawRow(values, r.body, false)
}

// Finalize draws the bold totals row (skipped when totals is nil) and makes
// the renderer terminal. A document with no data rows still gets its header.
func (r *Renderer) Finalize(totals []types.CellValue) error {
	if r.state == finalized {
		return ErrFinalized
	}
	if totals != nil {
		if err := r.drawRow(totals, r.bold, true); err != nil {
			return err
		}
	} else if r.state == awaitingPage {
		if err := r.StartPage(); err != nil {
			return err
		}
	}

	r.state = finalized
	r.log.Debug().
		Int("pages", r.stats.Pages).
		Int("rows", r.stats.Rows).
		Msg("table finalized")
	return nil
}

// Render serializes the finished document. No bytes reach w unless the
// renderer is finalized; output failures are wrapped in ErrSerialization.
func (r *Renderer) Render(w io.Writer) error {
	if r.state != finalized {
		return ErrNotFinalized
	}
	if err := r.canvas.Output(w); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

func (r *Renderer) drawRow(values []types.CellValue, style Style, totals bool) error {
	if r.state == finalized {
		return ErrFinalized
	}
	if len(values) != len(r.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrRowShape, len(values), len(r.columns))
	}
	if r.state == awaitingPage {
		if err := r.StartPage(); err != nil {
			return err
		}
	}

	lines, h := r.measure(r.display(values), style, r.layout.MinRowHeight)

	if r.cursorY+h > r.layout.Bottom() {
		if r.rowsOnPage > 0 {
			if err := r.StartPage(); err != nil {
				return err
			}
		}
		// A row taller than an empty page is clipped so pagination ends.
		if avail := r.layout.Bottom() - r.cursorY; h > avail {
			r.log.Warn().Float64("height", h).Float64("available", avail).Msg("row taller than page, clipping")
			h = avail
			lines = r.clip(lines, h, style)
		}
	}

	r.drawGrid(lines, h, style)
	r.rowsOnPage++
	if !totals {
		r.stats.Rows++
	}
	r.state = rowsDrawn
	return nil
}

func (r *Renderer) drawGrid(lines [][]string, h float64, style Style) {
	x := r.layout.MarginLeft
	for i, w := range r.widths {
		r.canvas.DrawCell(Box{
			X:       x,
			Y:       r.cursorY,
			W:       w,
			H:       h,
			Padding: r.layout.CellPadding,
			Lines:   lines[i],
		}, style)
		x += w
	}
	r.cursorY += h
}

// measure wraps every cell and returns the lines plus the row height.
// Text that cannot be measured is logged and the cell is left empty.
func (r *Renderer) measure(texts []string, style Style, floor float64) ([][]string, float64) {
	lh := r.canvas.LineHeight(style)
	out := make([][]string, len(texts))
	tallest := 0.0
	for i, text := range texts {
		lines, err := wrapText(r.canvas, text, r.widths[i]-2*r.layout.CellPadding, style)
		if err != nil {
			merr := &MeasurementError{Column: r.columns[i].Label, Err: err}
			r.log.Warn().Err(merr).Msg("rendering cell empty")
			continue
		}
		out[i] = lines
		if h := float64(len(lines)) * lh; h > tallest {
			tallest = h
		}
	}

	h := tallest + r.layout.RowPadding
	if h < floor {
		h = floor
	}
	return out, h
}

func (r *Renderer) clip(lines [][]string, h float64, style Style) [][]string {
	fit := int((h - r.layout.CellPadding) / r.canvas.LineHeight(style))
	if fit < 0 {
		fit = 0
	}
	out := make([][]string, len(lines))
	for i, l := range lines {
		if len(l) > fit {
			l = l[:fit]
		}
		out[i] = l
	}
	return out
}

func (r *Renderer) display(values []types.CellValue) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Display(r.opts.Placeholder, r.opts.ZeroAsPlaceholder)
	}
	return out
}
