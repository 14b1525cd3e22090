// =============================================================================
// Sales Report Engine - Shared Types
// =============================================================================
//
// This package contains the value types shared across the report pipeline to
// avoid import cycles. Types defined here are used by:
//   - aggregate (reads SaleRecord)
//   - columns   (builds ColumnSpec sequences)
//   - render    (resolves CellValue to display text)
//   - report    (composes all of the above)
//   - store / backup (produce SaleRecord values)
//
// =============================================================================

package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/segment"
)

// =============================================================================
// SALE RECORD
// =============================================================================

// DayLayout is the fixed-width calendar day format used for row keys.
// Fixed width keeps lexical order identical to chronological order.
const DayLayout = "2006-01-02"

// SaleRecord is a single unit sale as captured at the counter.
// Records are treated as immutable values: the report pipeline only reads
// caller-supplied slices and never modifies them.
type SaleRecord struct {
	// ID is the store-assigned identity. Zero until persisted.
	ID int64 `validate:"gte=0"`

	// Brand, Model and Variant describe the handset sold.
	Brand   string `validate:"required,notblank"`
	Model   string `validate:"required,notblank"`
	Variant string

	// Quantity is the number of units sold in this line. Always positive.
	Quantity int `validate:"gt=0"`

	// UnitPrice is the selling price of one unit. Never negative.
	UnitPrice decimal.Decimal `validate:"gte=0"`

	// Segment is the rolling price band assigned at entry time.
	Segment string

	// Timestamp is the sale instant in milliseconds since the Unix epoch.
	// Caller supplied, so it may be backdated.
	Timestamp int64 `validate:"gt=0"`
}

// NewSaleRecord builds an unsaved record at entry time. Text fields are
// trimmed and the segment is derived from the price with the rolling 10k
// policy.
func NewSaleRecord(brand, model, variant string, qty int, price decimal.Decimal, at time.Time) SaleRecord {
	return SaleRecord{
		Brand:     strings.TrimSpace(brand),
		Model:     strings.TrimSpace(model),
		Variant:   strings.TrimSpace(variant),
		Quantity:  qty,
		UnitPrice: price,
		Segment:   segment.Rolling10k(price),
		Timestamp: Millis(at),
	}
}

// LineTotal returns UnitPrice x Quantity.
func (r SaleRecord) LineTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Time returns the sale instant in the given location.
// A nil location is treated as UTC.
func (r SaleRecord) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(r.Timestamp).In(loc)
}

// Day returns the calendar day of the sale as YYYY-MM-DD.
func (r SaleRecord) Day(loc *time.Location) string {
	return r.Time(loc).Format(DayLayout)
}

// Millis converts a time to the millisecond timestamp stored on records.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// =============================================================================
// CELL VALUES
// =============================================================================

// CellKind tags the variant held by a CellValue.
type CellKind int

const (
	// CellEmpty renders as the caller's placeholder (or nothing).
	CellEmpty CellKind = iota

	// CellNumber holds a decimal that is formatted only at render time.
	CellNumber

	// CellText holds pre-built text such as narratives or labels.
	CellText
)

// CellValue is a tagged union of Number(decimal) | Text(string) | Empty.
// Aggregation stays numeric; display strings are produced by Display.
type CellValue struct {
	kind CellKind
	num  decimal.Decimal
	text string
}

// Number wraps a decimal amount.
func Number(d decimal.Decimal) CellValue {
	return CellValue{kind: CellNumber, num: d}
}

// Int wraps an integer count.
func Int(n int64) CellValue {
	return CellValue{kind: CellNumber, num: decimal.NewFromInt(n)}
}

// Text wraps a literal string. An empty string is still a Text cell.
func Text(s string) CellValue {
	return CellValue{kind: CellText, text: s}
}

// Empty returns the empty cell.
func Empty() CellValue {
	return CellValue{}
}

// Kind reports which variant the cell holds.
func (c CellValue) Kind() CellKind {
	return c.kind
}

// Decimal returns the numeric payload. Non-numeric cells return zero.
func (c CellValue) Decimal() decimal.Decimal {
	return c.num
}

// IsZero is true for empty cells and for numeric cells equal to zero.
func (c CellValue) IsZero() bool {
	switch c.kind {
	case CellEmpty:
		return true
	case CellNumber:
		return c.num.IsZero()
	default:
		return false
	}
}

// Display resolves the cell to the text drawn on the page.
//
// PARAMETERS:
//   - placeholder: text used for empty cells and, when zeroAsPlaceholder is
//     set, for numeric zeros (e.g. "-" in volume matrices).
//
// Numbers are truncated toward zero and printed without grouping so that
// printed figures match the whole-rupee amounts shown at the counter.
func (c CellValue) Display(placeholder string, zeroAsPlaceholder bool) string {
	switch c.kind {
	case CellNumber:
		if zeroAsPlaceholder && c.num.IsZero() {
			return placeholder
		}
		return strconv.FormatInt(c.num.IntPart(), 10)
	case CellText:
		return c.text
	default:
		return placeholder
	}
}

// =============================================================================
// COLUMN MODEL
// =============================================================================

// ColumnKind describes what a column holds. Renderers use it for alignment
// and spreadsheet cell typing; it never affects width.
type ColumnKind int

const (
	ColumnKey ColumnKind = iota
	ColumnQuantity
	ColumnValue
	ColumnText
	ColumnNarrative
)

// ColumnSpec is one output column: a header label and a width in layout units.
type ColumnSpec struct {
	Label      string
	WidthUnits int
	Kind       ColumnKind
}

// Numeric reports whether cells of this column hold numbers.
func (c ColumnSpec) Numeric() bool {
	return c.Kind == ColumnQuantity || c.Kind == ColumnValue
}
