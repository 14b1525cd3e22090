// =============================================================================
// Sales Report Engine - Report Variants
// =============================================================================
//
// A variant is a policy: which row and column keys to aggregate on, which
// columns to build from the discovered keys, and how to turn the pivot into
// table rows. Every variant feeds the same renderer.
//
// VARIANTS:
//   daily       date x brand matrix with logs and brand summary narratives
//   segment     fixed price band x brand volume matrix
//   ledger      one row per sale, newest first
//   brands      brand performance summary with grand total
//   comparison  brand x (MTD, LMTD) quantity and value
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"strings"
)

// Variant names one report layout.
type Variant string

const (
	DailyMatrix      Variant = "daily"
	SegmentMatrix    Variant = "segment"
	Ledger           Variant = "ledger"
	BrandSummary     Variant = "brands"
	PeriodComparison Variant = "comparison"
)

// Variants lists every variant in the order the CLI generates them.
func Variants() []Variant {
	return []Variant{DailyMatrix, SegmentMatrix, Ledger, BrandSummary, PeriodComparison}
}

// ErrUnknownVariant is returned for a variant name that is not registered.
var ErrUnknownVariant = errors.New("unknown report variant")

// ErrUnknownFormat is returned for an output format other than pdf or xlsx.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseVariant maps a CLI name (case-insensitive) to a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Title is the heading used when the profile names no outlet.
func (v Variant) Title() string {
	switch v {
	case DailyMatrix:
		return "Daily Sales Report"
	case SegmentMatrix:
		return "Price Segment Analysis"
	case Ledger:
		return "Detailed Sales Log"
	case BrandSummary:
		return "Brand Performance Summary"
	case PeriodComparison:
		return "MTD vs LMTD"
	default:
		return string(v)
	}
}

// Format is an output serialization.
type Format string

const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// ParseFormat maps "pdf" or "xlsx" (case-insensitive) to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PDF, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Mode selects what the matrix cells show.
type Mode string

const (
	// ModeValue shows a quantity and a value column per brand.
	ModeValue Mode = "value"
	// ModeQuantity shows only quantities.
	ModeQuantity Mode = "quantity"
	// ModeCompact shows one "qty (1.2L)" column per brand.
	ModeCompact Mode = "compact"
)

// ParseMode maps a CLI name to a Mode. Empty means ModeValue.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeValue, nil
	case ModeValue, ModeQuantity, ModeCompact:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (value, quantity, compact)", s)
	}
}
