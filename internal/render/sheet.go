package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/salesreport/internal/types"
)

const (
	reportSheet = "Report"
	factsSheet  = "Cells"

	// Excel column width is in characters; width units are roughly points.
	unitsPerChar = 5.0
)

// WriteSheet serializes t as an XLSX workbook. The header row is repeated on
// every printed page through the Print_Titles defined name. Numeric cells
// are written as numbers so the workbook stays usable for further analysis.
func WriteSheet(t *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create totals style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create body style: %w", err)
	}

	row := 1
	for _, line := range []string{t.Title, t.Subtitle} {
		if line == "" {
			continue
		}
		if err := f.SetCellValue(reportSheet, cellName(1, row), line); err != nil {
			return err
		}
		row++
	}

	headerRow := row
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Label
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(reportSheet, name, name, float64(c.WidthUnits)/unitsPerChar+2); err != nil {
			return err
		}
	}
	if err := writeRow(f, reportSheet, headerRow, header, headerStyle); err != nil {
		return err
	}
	row++

	for _, values := range t.Rows {
		if err := writeRow(f, reportSheet, row, sheetValues(t, values), wrapStyle); err != nil {
			return err
		}
		row++
	}
	if t.Totals != nil {
		if err := writeRow(f, reportSheet, row, sheetValues(t, t.Totals), boldStyle); err != nil {
			return err
		}
	}

	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Titles",
		RefersTo: fmt.Sprintf("'%s'!$%d:$%d", reportSheet, headerRow, headerRow),
		Scope:    reportSheet,
	}); err != nil {
		return fmt.Errorf("set print titles: %w", err)
	}
	orientation := "landscape"
	if err := f.SetPageLayout(reportSheet, &excelize.PageLayoutOptions{Orientation: &orientation}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}

	if len(t.Facts) > 0 {
		if err := writeFacts(f, t.Facts, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

func writeFacts(f *excelize.File, facts []Fact, headerStyle int) error {
	if _, err := f.NewSheet(factsSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", factsSheet, err)
	}
	if err := writeRow(f, factsSheet, 1, []interface{}{"Row", "Column", "Quantity", "Value"}, headerStyle); err != nil {
		return err
	}
	for i, fact := range facts {
		values := []interface{}{fact.Row, fact.Column, fact.Quantity, fact.Value.InexactFloat64()}
		if err := writeRow(f, factsSheet, i+2, values, 0); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	if style == 0 || len(values) == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, cellName(1, row), cellName(len(values), row), style)
}

// sheetValues keeps numbers numeric. Whole amounts are stored as integers.
func sheetValues(t *Table, values []types.CellValue) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		switch v.Kind() {
		case types.CellNumber:
			if t.ZeroAsPlaceholder && v.IsZero() {
				out[i] = t.Placeholder
			} else if d := v.Decimal(); d.IsInteger() {
				out[i] = d.IntPart()
			} else {
				out[i] = d.InexactFloat64()
			}
		default:
			out[i] = v.Display(t.Placeholder, t.ZeroAsPlaceholder)
		}
	}
	return out
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
