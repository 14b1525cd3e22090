package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// OpKind identifies a recorded draw call.
type OpKind int

const (
	OpPage OpKind = iota
	OpCell
	OpText
)

// Op is one recorded draw call. Page is 1-based.
type Op struct {
	Kind  OpKind
	Page  int
	Box   Box
	Text  string
	Style Style
}

// Recorder is a Canvas that measures text with a fixed per-rune advance and
// keeps every draw call. It backs dry runs, where only the page count
// matters, and makes pagination deterministic to test.
type Recorder struct {
	// Advance is the width of one rune as a fraction of the font size.
	Advance float64

	Ops   []Op
	pages int
}

// NewRecorder returns a Recorder with a Helvetica-like average advance.
func NewRecorder() *Recorder {
	return &Recorder{Advance: 0.5}
}

func (r *Recorder) AddPage() {
	r.pages++
	r.Ops = append(r.Ops, Op{Kind: OpPage, Page: r.pages})
}

func (r *Recorder) PageCount() int {
	return r.pages
}

func (r *Recorder) StringWidth(text string, style Style) float64 {
	return float64(utf8.RuneCountInString(text)) * style.FontSize * r.Advance
}

func (r *Recorder) LineHeight(style Style) float64 {
	return style.FontSize * pdfLineSpacing
}

func (r *Recorder) DrawCell(box Box, style Style) {
	box.Lines = append([]string(nil), box.Lines...)
	r.Ops = append(r.Ops, Op{Kind: OpCell, Page: r.pages, Box: box, Text: strings.Join(box.Lines, "\n"), Style: style})
}

func (r *Recorder) DrawCentered(y float64, text string, style Style) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.pages, Box: Box{Y: y}, Text: text, Style: style})
}

// Output writes one line per draw call.
func (r *Recorder) Output(w io.Writer) error {
	for _, op := range r.Ops {
		var err error
		switch op.Kind {
		case OpPage:
			_, err = fmt.Fprintf(w, "page %d\n", op.Page)
		case OpText:
			_, err = fmt.Fprintf(w, "  text y=%.1f %q\n", op.Box.Y, op.Text)
		case OpCell:
			_, err = fmt.Fprintf(w, "  cell x=%.1f y=%.1f w=%.1f h=%.1f bold=%t %q\n",
				op.Box.X, op.Box.Y, op.Box.W, op.Box.H, op.Style.Bold, op.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Cells returns the cell ops drawn on page (1-based).
func (r *Recorder) Cells(page int) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpCell && op.Page == page {
			out = append(out, op)
		}
	}
	return out
}
