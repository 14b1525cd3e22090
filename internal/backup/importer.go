package backup

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/csvparser"
	"github.com/ginjaninja78/salesreport/internal/types"
	"github.com/ginjaninja78/salesreport/internal/validation"
)

// =============================================================================
// IMPORT OPTIONS AND RESULT
// =============================================================================

// Options configures an import.
type Options struct {
	// CSV applies to .csv and .txt files and to the header layout of
	// workbooks.
	CSV config.CSVSettings

	// Location interprets dates without a zone. Nil means UTC.
	Location *time.Location

	// Now stamps rows without a date. Zero means time.Now().
	Now time.Time

	// Validator checks every parsed record. Nil uses the default rules.
	Validator *validation.Validator
}

// Result is the outcome of one import. Records are unsaved (ID 0) with
// their segment recomputed from the price.
type Result struct {
	Source   string
	Records  []types.SaleRecord
	RowsRead int
	Skipped  int

	// Problems lists skipped rows and warnings, ordered by source row.
	Problems []*validation.ValidationError

	// Positional is true when the headers were not recognized and the
	// legacy column order was assumed.
	Positional bool
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// ImportFile reads a workbook (.xlsx) or delimited text (.csv, .txt).
// Bad rows never fail the import; they are counted in Skipped and listed
// in Problems.
func ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	var (
		data *csvparser.Data
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, openErr := excelize.OpenFile(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", openErr)
		}
		defer f.Close()
		data, err = workbookData(f, opts.CSV)
	case ".csv", ".txt":
		data, err = csvparser.ParseFile(path, opts.CSV)
	default:
		return nil, fmt.Errorf("unsupported import file %q (expected .xlsx or .csv)", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	res, err := FromData(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// ImportWorkbook reads a workbook from r.
func ImportWorkbook(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	data, err := workbookData(f, opts.CSV)
	if err != nil {
		return nil, err
	}
	return FromData(ctx, data, opts)
}

// workbookData reads the master backup sheet, or the first sheet, with
// raw cell values so numbers are not reformatted.
func workbookData(f *excelize.File, settings config.CSVSettings) (*csvparser.Data, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == SheetName {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return csvparser.FromRows(rows, settings)
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// columnMap holds the source column index of each field, -1 when absent.
type columnMap struct {
	brand, model, variant, qty, price, when int
}

// legacyColumns is ID | Brand | Model | Variant | Quantity | Price | Segment | Date.
var legacyColumns = columnMap{brand: 1, model: 2, variant: 3, qty: 4, price: 5, when: 7}

var headerAliases = map[string]string{
	"brand":     "brand",
	"make":      "brand",
	"model":     "model",
	"modelname": "model",
	"variant":   "variant",
	"storage":   "variant",
	"qty":       "qty",
	"quantity":  "qty",
	"units":     "qty",
	"price":     "price",
	"unitprice": "price",
	"rate":      "price",
	"timestamp": "when",
	"date":      "when",
	"datetime":  "when",
	"saledate":  "when",
}

// mapColumns locates fields by header name. Without brand, quantity and
// price headers the legacy positional layout is used.
func mapColumns(headers []string) (columnMap, bool) {
	m := columnMap{brand: -1, model: -1, variant: -1, qty: -1, price: -1, when: -1}
	for i, h := range headers {
		field, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		var slot *int
		switch field {
		case "brand":
			slot = &m.brand
		case "model":
			slot = &m.model
		case "variant":
			slot = &m.variant
		case "qty":
			slot = &m.qty
		case "price":
			slot = &m.price
		case "when":
			slot = &m.when
		}
		if *slot < 0 {
			*slot = i
		}
	}
	if m.brand < 0 || m.qty < 0 || m.price < 0 {
		return legacyColumns, true
	}
	return m, false
}

func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, h)
}

// FromData converts parsed rows into sale records.
func FromData(ctx context.Context, data *csvparser.Data, opts Options) (*Result, error) {
	log := zerolog.Ctx(ctx)

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	v := opts.Validator
	if v == nil {
		v = validation.NewValidator()
	}

	cols, positional := mapColumns(data.Headers)
	if positional {
		log.Warn().Strs("headers", data.Headers).Msg("headers not recognized, assuming legacy column order")
	}

	res := &Result{Source: data.SourceFile, RowsRead: data.RowCount(), Positional: positional}
	skip := func(row int, field, value string, err error) {
		res.Skipped++
		res.Problems = append(res.Problems, &validation.ValidationError{
			Severity:  validation.SeverityError,
			Field:     field,
			Value:     value,
			Rule:      "parse",
			Message:   fmt.Sprintf("%s: %v", field, err),
			RowNumber: row,
		})
	}

	// Parsed rows are validated as one batch after the loop.
	var parsed []types.SaleRecord
	var parsedRows []int

	for i, raw := range data.RawRows {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rowNum := data.RowNumbers[i]
		cell := func(idx int) string {
			if idx < 0 || idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}

		qty, err := parseQuantity(cell(cols.qty))
		if err != nil {
			skip(rowNum, "quantity", cell(cols.qty), err)
			continue
		}
		price, err := parsePrice(cell(cols.price))
		if err != nil {
			skip(rowNum, "unitprice", cell(cols.price), err)
			continue
		}

		at, dated, err := parseWhen(cell(cols.when), loc)
		if err != nil {
			skip(rowNum, "timestamp", cell(cols.when), err)
			continue
		}
		if !dated {
			at = now
			res.Problems = append(res.Problems, &validation.ValidationError{
				Severity:  validation.SeverityWarning,
				Field:     "timestamp",
				Rule:      "default_now",
				Message:   "no date, import time used",
				RowNumber: rowNum,
			})
		}

		parsed = append(parsed, types.NewSaleRecord(cell(cols.brand), cell(cols.model), cell(cols.variant), qty, price, at))
		parsedRows = append(parsedRows, rowNum)
	}

	checked := v.ValidateAll(parsed, parsedRows)
	res.Problems = append(res.Problems, checked.Errors...)
	for i, rec := range parsed {
		if checked.Rejected[i] {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	sort.SliceStable(res.Problems, func(a, b int) bool {
		return res.Problems[a].RowNumber < res.Problems[b].RowNumber
	})

	log.Info().
		Str("source", data.SourceFile).
		Int("rows", res.RowsRead).
		Int("imported", len(res.Records)).
		Int("skipped", res.Skipped).
		Msg("import parsed")
	return res, nil
}

// parseQuantity accepts whole numbers, including spreadsheet forms like "2.0".
func parseQuantity(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(d.IntPart()), nil
}

var priceCleaner = strings.NewReplacer(",", "", "₹", "", "Rs.", "", "Rs", "", " ", "")

// parsePrice accepts plain and grouped amounts with an optional rupee prefix.
func parsePrice(s string) (decimal.Decimal, error) {
	clean := priceCleaner.Replace(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("missing")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not an amount", s)
	}
	return d, nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// parseWhen reads epoch milliseconds, a spreadsheet date serial or one of
// dateLayouts in loc. An empty value reports dated=false.
func parseWhen(s string, loc *time.Location) (t time.Time, dated bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case n >= 1e11:
			return time.UnixMilli(int64(n)).In(loc), true, nil
		case n > 0 && n < 1e6:
			serial, err := excelize.ExcelDateToTime(n, false)
			if err != nil {
				return time.Time{}, false, err
			}
			return time.Date(serial.Year(), serial.Month(), serial.Day(),
				serial.Hour(), serial.Minute(), serial.Second(), 0, loc), true, nil
		default:
			return time.Time{}, false, fmt.Errorf("%q is not a timestamp", s)
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
}
