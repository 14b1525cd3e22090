// =============================================================================
// Sales Report Engine - Aggregator
// =============================================================================
//
// This module groups sale records along two categorical dimensions and
// computes per-cell, per-row, per-column and grand totals.
//
// AGGREGATION PIPELINE:
//   1. Resolve the row and column key of every record (single pass)
//   2. Add quantity AND monetary value into the cell, row, column and grand
//      accumulators at the same time
//   3. Sort row keys ascending; order column keys ascending or by priority
//   4. Optionally build the per-row narratives (logs and brand summary)
//
// The input slice is never modified. Narrative building sorts a copy.
//
// =============================================================================

package aggregate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/format"
	"github.com/ginjaninja78/salesreport/internal/period"
	"github.com/ginjaninja78/salesreport/internal/segment"
	"github.com/ginjaninja78/salesreport/internal/types"
)

// Others is the column that collects brands outside the priority list when
// normalization is enabled. It is always ordered last.
const Others = "Others"

// =============================================================================
// MEASURES
// =============================================================================

// Measure is the pair tracked for every cell: units sold and money taken.
type Measure struct {
	Quantity int64
	Value    decimal.Decimal
}

// Add returns m + o.
func (m Measure) Add(o Measure) Measure {
	return Measure{Quantity: m.Quantity + o.Quantity, Value: m.Value.Add(o.Value)}
}

// IsZero reports whether nothing was sold.
func (m Measure) IsZero() bool {
	return m.Quantity == 0 && m.Value.IsZero()
}

// Equal compares both components.
func (m Measure) Equal(o Measure) bool {
	return m.Quantity == o.Quantity && m.Value.Equal(o.Value)
}

// =============================================================================
// KEY AND VALUE FUNCTIONS
// =============================================================================

// KeyFunc extracts a categorical key from a record.
type KeyFunc func(types.SaleRecord) string

// ValueFunc extracts the monetary contribution of a record.
type ValueFunc func(types.SaleRecord) decimal.Decimal

// ByDay keys records by calendar day in loc.
func ByDay(loc *time.Location) KeyFunc {
	return func(r types.SaleRecord) string {
		return r.Day(loc)
	}
}

// ByBrand keys records by trimmed brand, ignoring case. A brand matching
// an entry of priority takes that spelling; any other brand takes the first
// spelling this key function sees. The returned function keeps state and
// belongs to a single aggregation.
func ByBrand(priority ...string) KeyFunc {
	spelling := make(map[string]string, len(priority))
	for _, b := range priority {
		if _, ok := spelling[foldKey(b)]; !ok {
			spelling[foldKey(b)] = strings.TrimSpace(b)
		}
	}
	return func(r types.SaleRecord) string {
		brand := strings.TrimSpace(r.Brand)
		k := foldKey(brand)
		if s, ok := spelling[k]; ok {
			return s
		}
		spelling[k] = brand
		return brand
	}
}

// foldKey is the case-insensitive form of a categorical key.
func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BySegment keys records by classifying their unit price.
func BySegment(policy segment.Policy) KeyFunc {
	return func(r types.SaleRecord) string {
		return policy(r.UnitPrice)
	}
}

// ByPeriod keys records by the label of the first range containing them.
// Records outside every range get the empty key; filter them out first.
func ByPeriod(ranges ...period.Range) KeyFunc {
	return func(r types.SaleRecord) string {
		for _, p := range ranges {
			if p.Contains(r.Timestamp) {
				return p.Label
			}
		}
		return ""
	}
}

// LineTotal is the default ValueFunc: quantity x unit price.
func LineTotal(r types.SaleRecord) decimal.Decimal {
	return r.LineTotal()
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures one aggregation.
type Options struct {
	// RowKey and ColumnKey are required.
	RowKey    KeyFunc
	ColumnKey KeyFunc

	// Value defaults to LineTotal.
	Value ValueFunc

	// ColumnOrder is a priority list for column keys. Keys matching an
	// entry regardless of case take the entry's spelling. Present keys from
	// the list come first in list order; the remaining keys follow
	// ascending.
	ColumnOrder []string

	// NormalizeOthers collapses column keys missing from ColumnOrder into
	// the Others column. Ignored when ColumnOrder is empty.
	NormalizeOthers bool

	// Narratives enables the per-row logs and summary text.
	Narratives bool
}

// =============================================================================
// PIVOT TABLE
// =============================================================================

// PivotTable is the result of one aggregation. It is built once and only
// read afterwards.
type PivotTable struct {
	// RowKeys are sorted ascending by string.
	RowKeys []string

	// ColumnKeys are deduplicated and ordered per Options.
	ColumnKeys []string

	// Records is the number of input records that contributed.
	Records int

	cells     map[string]map[string]Measure
	rowTotals map[string]Measure
	colTotals map[string]Measure
	grand     Measure
	logs      map[string]string
	summaries map[string]string
}

// Cell returns the measure at (row, col). Missing cells read as zero.
func (p *PivotTable) Cell(row, col string) Measure {
	return p.cells[row][col]
}

// RowTotal returns the sum of a row across all columns.
func (p *PivotTable) RowTotal(row string) Measure {
	return p.rowTotals[row]
}

// ColumnTotal returns the sum of a column across all rows.
func (p *PivotTable) ColumnTotal(col string) Measure {
	return p.colTotals[col]
}

// GrandTotal returns the sum over every record.
func (p *PivotTable) GrandTotal() Measure {
	return p.grand
}

// Logs returns the newline-joined record lines for a row. Empty when
// narratives were not requested.
func (p *PivotTable) Logs(row string) string {
	return p.logs[row]
}

// Summary returns the newline-joined per-brand summary for a row.
func (p *PivotTable) Summary(row string) string {
	return p.summaries[row]
}

// Empty reports whether no record contributed.
func (p *PivotTable) Empty() bool {
	return p.Records == 0
}

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregate builds a PivotTable from records in a single pass.
//
// PARAMETERS:
//   - records: the snapshot to aggregate; read only.
//   - opts: key, value and ordering policies.
//
// RETURNS:
//   - The populated PivotTable. An empty input yields an empty table with
//     zero totals, never an error.
func Aggregate(records []types.SaleRecord, opts Options) *PivotTable {
	value := opts.Value
	if value == nil {
		value = LineTotal
	}

	known := make(map[string]string, len(opts.ColumnOrder))
	for _, k := range opts.ColumnOrder {
		if _, ok := known[foldKey(k)]; !ok {
			known[foldKey(k)] = k
		}
	}
	normalize := opts.NormalizeOthers && len(opts.ColumnOrder) > 0

	p := &PivotTable{
		Records:   len(records),
		cells:     make(map[string]map[string]Measure),
		rowTotals: make(map[string]Measure),
		colTotals: make(map[string]Measure),
		logs:      make(map[string]string),
		summaries: make(map[string]string),
	}

	// Record indices per row, kept only for narratives.
	var byRow map[string][]int
	if opts.Narratives {
		byRow = make(map[string][]int)
	}

	for i, r := range records {
		row := opts.RowKey(r)
		col := opts.ColumnKey(r)
		if k, ok := known[foldKey(col)]; ok {
			col = k
		} else if normalize {
			col = Others
		}

		m := Measure{Quantity: int64(r.Quantity), Value: value(r)}

		cols, ok := p.cells[row]
		if !ok {
			cols = make(map[string]Measure)
			p.cells[row] = cols
		}
		cols[col] = cols[col].Add(m)
		p.rowTotals[row] = p.rowTotals[row].Add(m)
		p.colTotals[col] = p.colTotals[col].Add(m)
		p.grand = p.grand.Add(m)

		if byRow != nil {
			byRow[row] = append(byRow[row], i)
		}
	}

	p.RowKeys = sortedKeys(p.rowTotals)
	p.ColumnKeys = orderColumns(p.colTotals, opts.ColumnOrder)

	if opts.Narratives {
		for _, row := range p.RowKeys {
			p.logs[row] = buildLogs(records, byRow[row], value)
			p.summaries[row] = p.buildSummary(row)
		}
	}

	return p
}

// orderColumns returns the present column keys, priority keys first.
func orderColumns(present map[string]Measure, priority []string) []string {
	if len(priority) == 0 {
		return sortedKeys(present)
	}

	seen := make(map[string]struct{}, len(present))
	ordered := make([]string, 0, len(present))
	for _, k := range priority {
		if k == Others {
			continue
		}
		if _, ok := present[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}

	var rest []string
	for k := range present {
		if _, ok := seen[k]; ok || k == Others {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	if _, ok := present[Others]; ok {
		ordered = append(ordered, Others)
	}
	return ordered
}

func sortedKeys(m map[string]Measure) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// NARRATIVES
// =============================================================================

// buildLogs lists every record of a row as
// "{brand} {model} ({variant}) - {qty}u (Val: {value})", ordered by
// (brand, model). idx is copied before sorting.
func buildLogs(records []types.SaleRecord, idx []int, value ValueFunc) string {
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.Brand != rb.Brand {
			return ra.Brand < rb.Brand
		}
		return ra.Model < rb.Model
	})

	var sb strings.Builder
	for i, k := range order {
		r := records[k]
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.Brand)
		sb.WriteByte(' ')
		sb.WriteString(r.Model)
		sb.WriteString(" (")
		sb.WriteString(r.Variant)
		sb.WriteString(") - ")
		sb.WriteString(strconv.Itoa(r.Quantity))
		sb.WriteString("u (Val: ")
		sb.WriteString(format.Amount(value(r)))
		sb.WriteByte(')')
	}
	return sb.String()
}

// buildSummary lists "{brand}: {qty}u ({value})" for the row's columns with
// nonzero quantity, in column order.
func (p *PivotTable) buildSummary(row string) string {
	var lines []string
	for _, col := range p.ColumnKeys {
		m := p.Cell(row, col)
		if m.Quantity == 0 {
			continue
		}
		lines = append(lines, col+": "+strconv.FormatInt(m.Quantity, 10)+"u ("+format.Amount(m.Value)+")")
	}
	return strings.Join(lines, "\n")
}
