package render

import "io"

// Style is an immutable per-call drawing descriptor. Every draw call gets its
// own Style so no font or fill state leaks from one row into the next.
type Style struct {
	FontSize float64
	Bold     bool
	Fill     bool
}

// Box is one bordered cell: its rectangle, the wrapped lines drawn inside,
// and the inner padding applied on the left and top.
type Box struct {
	X, Y, W, H float64
	Padding    float64
	Lines      []string
}

// Canvas is a fixed-size page surface. PDFCanvas draws real documents;
// Recorder keeps the draw calls for dry runs and tests.
type Canvas interface {
	// AddPage starts a new page. Earlier pages are closed.
	AddPage()

	// PageCount returns the number of pages started so far.
	PageCount() int

	// StringWidth measures text on a single line in the given style.
	StringWidth(text string, style Style) float64

	// LineHeight is the vertical advance of one wrapped line.
	LineHeight(style Style) float64

	// DrawCell strokes the box border and draws its lines left aligned.
	DrawCell(box Box, style Style)

	// DrawCentered draws one line of text centered across the page width.
	DrawCentered(y float64, text string, style Style)

	// Output serializes the finished document.
	Output(w io.Writer) error
}
