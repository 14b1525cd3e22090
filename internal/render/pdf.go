package render

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFontFamily  = "Helvetica"
	pdfLineSpacing = 1.2
	pdfBorderWidth = 0.5
)

// PDFCanvas draws onto a gofpdf document sized to the layout page, in points.
// Automatic page breaks are off: the Renderer owns pagination.
type PDFCanvas struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

// NewPDFCanvas creates an empty document with the layout's page size.
func NewPDFCanvas(layout Layout) *PDFCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: layout.PageWidth, Ht: layout.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineWidth(pdfBorderWidth)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(pdfFontFamily, "", layout.FontSize)
	pdf.SetCreator("salesreport", true)

	return &PDFCanvas{
		pdf: pdf,
		// Core fonts are cp1252; translate UTF-8 input before drawing.
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  layout.PageWidth,
		height: layout.PageHeight,
	}
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *PDFCanvas) StringWidth(text string, style Style) float64 {
	c.apply(style)
	return c.pdf.GetStringWidth(c.tr(text))
}

func (c *PDFCanvas) LineHeight(style Style) float64 {
	return c.pdf.PointConvert(style.FontSize) * pdfLineSpacing
}

func (c *PDFCanvas) DrawCell(box Box, style Style) {
	c.apply(style)

	if style.Fill {
		c.pdf.SetFillColor(230, 230, 230)
		c.pdf.Rect(box.X, box.Y, box.W, box.H, "FD")
	} else {
		c.pdf.Rect(box.X, box.Y, box.W, box.H, "D")
	}

	lh := c.LineHeight(style)
	for i, line := range box.Lines {
		c.pdf.SetXY(box.X+box.Padding, box.Y+box.Padding+float64(i)*lh)
		c.pdf.CellFormat(box.W-2*box.Padding, lh, c.tr(line), "", 0, "L", false, 0, "")
	}
}

func (c *PDFCanvas) DrawCentered(y float64, text string, style Style) {
	c.apply(style)
	c.pdf.SetXY(0, y)
	c.pdf.CellFormat(c.width, c.LineHeight(style), c.tr(text), "", 0, "C", false, 0, "")
}

// Output writes the PDF. gofpdf defers drawing errors until here.
func (c *PDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func (c *PDFCanvas) apply(style Style) {
	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	c.pdf.SetFont(pdfFontFamily, fontStyle, style.FontSize)
}
