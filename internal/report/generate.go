package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/salesreport/internal/period"
	"github.com/ginjaninja78/salesreport/internal/render"
	"github.com/ginjaninja78/salesreport/internal/types"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options configures one Generate call. The zero value renders a value
// mode PDF in UTC with the default profile.
type Options struct {
	Format Format
	Mode   Mode

	// Location decides calendar days. Nil means UTC.
	Location *time.Location

	Profile Profile

	// Layout overrides the variant's page setup after the profile layout.
	Layout render.Layout

	// Period restricts the records and labels the document. For the
	// comparison variant it is the selected month; nil means the month
	// of Now.
	Period *period.Range

	// Now anchors MTD/LMTD and the subtitle of empty reports. Zero means
	// time.Now().
	Now time.Time

	// Canvas replaces the PDF canvas, for dry runs.
	Canvas render.Canvas

	// Logger defaults to the logger carried by the context.
	Logger *zerolog.Logger
}

// Document is a finished report.
type Document struct {
	RunID     string
	Variant   Variant
	Format    Format
	PageCount int
	Rows      int
	Bytes     []byte
}

// runContext is the resolved configuration a variant builder sees.
type runContext struct {
	loc     *time.Location
	profile Profile
	mode    Mode
	now     time.Time
	period  *period.Range
}

func (rc runContext) selected() period.Range {
	if rc.period != nil {
		return *rc.period
	}
	n := rc.now.In(rc.loc)
	return period.MonthRange(n.Year(), n.Month(), rc.loc)
}

func (rc runContext) comparisonRanges() (mtd, lmtd period.Range) {
	sel := rc.selected()
	return period.MTD(sel, rc.now), period.LMTD(sel, rc.now)
}

type builder func([]types.SaleRecord, runContext) (*render.Table, error)

var builders = map[Variant]builder{
	DailyMatrix:      buildDaily,
	SegmentMatrix:    buildSegment,
	Ledger:           buildLedger,
	BrandSummary:     buildBrands,
	PeriodComparison: buildComparison,
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate aggregates records for variant and serializes the result.
//
// PARAMETERS:
//   - ctx: checked once before work starts; carries the default logger.
//   - variant: which report to build.
//   - records: read only snapshot; never reordered or modified.
//   - opts: format, mode, profile and layout overrides.
//
// RETURNS:
//   - The document bytes on success. No bytes are returned with an error.
//   - ErrUnknownVariant, ErrUnknownFormat, *render.LayoutOverflowError or
//     an error wrapping render.ErrSerialization.
func Generate(ctx context.Context, variant Variant, records []types.SaleRecord, opts Options) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	build, ok := builders[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	format := opts.Format
	if format == "" {
		format = PDF
	}
	if format != PDF && format != XLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	rc := resolve(opts)
	runID := uuid.NewString()
	log := zerolog.Ctx(ctx).With().Str("run_id", runID).Str("variant", string(variant)).Logger()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("run_id", runID).Str("variant", string(variant)).Logger()
	}

	input := records
	if rc.period != nil && variant != PeriodComparison {
		input = rc.period.Filter(records)
	}

	table, err := build(input, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s report: %w", variant, err)
	}
	table.Title = rc.profile.Title(variant.Title())
	table.Subtitle = subtitle(variant, input, rc)

	doc := &Document{RunID: runID, Variant: variant, Format: format, Rows: len(table.Rows)}
	var buf bytes.Buffer

	switch format {
	case XLSX:
		if err := render.WriteSheet(table, &buf); err != nil {
			return nil, err
		}
		doc.PageCount = 1

	default:
		layout := opts.Layout.Merge(rc.profile.Layout.Merge(baseLayout(variant)))
		canvas := opts.Canvas
		if canvas == nil {
			canvas = render.NewPDFCanvas(layout)
		}
		stats, err := render.RenderOn(canvas, table, layout, render.Options{Logger: &log}, &buf)
		if err != nil {
			return nil, err
		}
		doc.PageCount = stats.Pages
	}

	doc.Bytes = buf.Bytes()
	log.Info().
		Str("format", string(format)).
		Int("records", len(input)).
		Int("rows", doc.Rows).
		Int("pages", doc.PageCount).
		Int("bytes", len(doc.Bytes)).
		Msg("report generated")
	return doc, nil
}

func resolve(opts Options) runContext {
	rc := runContext{
		loc:     opts.Location,
		profile: opts.Profile,
		mode:    opts.Mode,
		now:     opts.Now,
		period:  opts.Period,
	}
	if rc.loc == nil {
		rc.loc = time.UTC
	}
	if rc.mode == "" {
		rc.mode = ModeValue
	}
	if rc.now.IsZero() {
		rc.now = time.Now()
	}
	return rc
}

// subtitle is the date line under the title.
func subtitle(v Variant, records []types.SaleRecord, rc runContext) string {
	if v == PeriodComparison {
		mtd, lmtd := rc.comparisonRanges()
		return mtd.Label + " vs " + lmtd.Label
	}
	if rc.period != nil {
		return rc.period.Label
	}

	minMs, maxMs := int64(1), int64(0)
	for i, r := range records {
		if i == 0 || r.Timestamp < minMs {
			minMs = r.Timestamp
		}
		if i == 0 || r.Timestamp > maxMs {
			maxMs = r.Timestamp
		}
	}
	return period.Span(minMs, maxMs, rc.loc, rc.now)
}
