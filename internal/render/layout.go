package render

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// Layout is the page geometry shared by every page of one document.
// All lengths are in points.
type Layout struct {
	PageWidth  float64 `yaml:"page_width" mapstructure:"page_width"`
	PageHeight float64 `yaml:"page_height" mapstructure:"page_height"`

	MarginLeft   float64 `yaml:"margin_left" mapstructure:"margin_left"`
	MarginRight  float64 `yaml:"margin_right" mapstructure:"margin_right"`
	MarginTop    float64 `yaml:"margin_top" mapstructure:"margin_top"`
	MarginBottom float64 `yaml:"margin_bottom" mapstructure:"margin_bottom"`

	// TitleY and SubtitleY place the document title block.
	TitleY    float64 `yaml:"title_y" mapstructure:"title_y"`
	SubtitleY float64 `yaml:"subtitle_y" mapstructure:"subtitle_y"`

	FontSize         float64 `yaml:"font_size" mapstructure:"font_size"`
	TitleFontSize    float64 `yaml:"title_font_size" mapstructure:"title_font_size"`
	SubtitleFontSize float64 `yaml:"subtitle_font_size" mapstructure:"subtitle_font_size"`

	// MinRowHeight floors data rows; HeaderMinHeight floors the header row.
	MinRowHeight    float64 `yaml:"min_row_height" mapstructure:"min_row_height"`
	HeaderMinHeight float64 `yaml:"header_min_height" mapstructure:"header_min_height"`

	// RowPadding is added to the measured text height of a row.
	// CellPadding insets text from the left and top border.
	RowPadding  float64 `yaml:"row_padding" mapstructure:"row_padding"`
	CellPadding float64 `yaml:"cell_padding" mapstructure:"cell_padding"`

	// MinColumnWidth is the narrowest a column may become after fitting.
	MinColumnWidth float64 `yaml:"min_column_width" mapstructure:"min_column_width"`

	// UnitScale converts ColumnSpec width units to points.
	UnitScale float64 `yaml:"unit_scale" mapstructure:"unit_scale"`
}

// DefaultLayout is A4 landscape with the title block above an 80pt top margin.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:        842,
		PageHeight:       595,
		MarginLeft:       20,
		MarginRight:      20,
		MarginTop:        80,
		MarginBottom:     40,
		TitleY:           22,
		SubtitleY:        42,
		FontSize:         8,
		TitleFontSize:    14,
		SubtitleFontSize: 10,
		MinRowHeight:     20,
		HeaderMinHeight:  30,
		RowPadding:       10,
		CellPadding:      2,
		MinColumnWidth:   12,
		UnitScale:        1,
	}
}

// Merge fills zero fields of l from base.
func (l Layout) Merge(base Layout) Layout {
	pick := func(v, d float64) float64 {
		if v == 0 {
			return d
		}
		return v
	}
	return Layout{
		PageWidth:        pick(l.PageWidth, base.PageWidth),
		PageHeight:       pick(l.PageHeight, base.PageHeight),
		MarginLeft:       pick(l.MarginLeft, base.MarginLeft),
		MarginRight:      pick(l.MarginRight, base.MarginRight),
		MarginTop:        pick(l.MarginTop, base.MarginTop),
		MarginBottom:     pick(l.MarginBottom, base.MarginBottom),
		TitleY:           pick(l.TitleY, base.TitleY),
		SubtitleY:        pick(l.SubtitleY, base.SubtitleY),
		FontSize:         pick(l.FontSize, base.FontSize),
		TitleFontSize:    pick(l.TitleFontSize, base.TitleFontSize),
		SubtitleFontSize: pick(l.SubtitleFontSize, base.SubtitleFontSize),
		MinRowHeight:     pick(l.MinRowHeight, base.MinRowHeight),
		HeaderMinHeight:  pick(l.HeaderMinHeight, base.HeaderMinHeight),
		RowPadding:       pick(l.RowPadding, base.RowPadding),
		CellPadding:      pick(l.CellPadding, base.CellPadding),
		MinColumnWidth:   pick(l.MinColumnWidth, base.MinColumnWidth),
		UnitScale:        pick(l.UnitScale, base.UnitScale),
	}
}

// Printable is the width available to the table.
func (l Layout) Printable() float64 {
	return l.PageWidth - l.MarginLeft - l.MarginRight
}

// Bottom is the lowest y a row may reach.
func (l Layout) Bottom() float64 {
	return l.PageHeight - l.MarginBottom
}

func (l Layout) validate() error {
	switch {
	case l.PageWidth <= 0 || l.PageHeight <= 0:
		return &LayoutOverflowError{Reason: "page size must be positive"}
	case l.FontSize <= 0:
		return &LayoutOverflowError{Reason: "font size must be positive"}
	case l.UnitScale <= 0:
		return &LayoutOverflowError{Reason: "unit scale must be positive"}
	case l.Printable() <= 0:
		return &LayoutOverflowError{Reason: "horizontal margins leave no printable width"}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrFinalized is returned for draws after Finalize.
	ErrFinalized = errors.New("renderer is finalized")

	// ErrNotFinalized is returned when serializing an unfinished document.
	ErrNotFinalized = errors.New("renderer is not finalized")

	// ErrSerialization wraps failures to produce output bytes.
	ErrSerialization = errors.New("serialization failed")

	// ErrRowShape is returned when a row does not match the column count.
	ErrRowShape = errors.New("row does not match column count")
)

// LayoutOverflowError reports a configuration that cannot be laid out.
// It is raised by New, before anything is drawn.
type LayoutOverflowError struct {
	Column  string
	Width   float64
	Minimum float64
	Reason  string
}

func (e *LayoutOverflowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("layout overflow: column %q is %.1fpt wide, minimum is %.1fpt", e.Column, e.Width, e.Minimum)
	}
	return "layout overflow: " + e.Reason
}

// MeasurementError reports cell text that could not be measured. The cell
// is drawn empty and the error is only logged.
type MeasurementError struct {
	Column string
	Err    error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("measure cell in column %q: %v", e.Column, e.Err)
}

func (e *MeasurementError) Unwrap() error {
	return e.Err
}

// =============================================================================
// COLUMN FITTING
// =============================================================================

// FitColumns converts width units to points, scaling every column down by
// the same factor when the table is wider than the printable area.
//
// RETURNS:
//   - The column widths in points and the scale factor applied (1 if none).
//   - A *LayoutOverflowError when any column ends up below MinColumnWidth.
func FitColumns(l Layout, cols []types.ColumnSpec) ([]float64, float64, error) {
	if len(cols) == 0 {
		return nil, 0, &LayoutOverflowError{Reason: "no columns"}
	}

	total := 0.0
	for _, c := range cols {
		if c.WidthUnits <= 0 {
			return nil, 0, &LayoutOverflowError{Column: c.Label, Minimum: l.MinColumnWidth}
		}
		total += float64(c.WidthUnits) * l.UnitScale
	}

	scale := 1.0
	if total > l.Printable() {
		scale = l.Printable() / total
	}

	widths := make([]float64, len(cols))
	for i, c := range cols {
		w := float64(c.WidthUnits) * l.UnitScale * scale
		if w < l.MinColumnWidth {
			return nil, 0, &LayoutOverflowError{Column: c.Label, Width: w, Minimum: l.MinColumnWidth}
		}
		widths[i] = w
	}
	return widths, scale, nil
}
