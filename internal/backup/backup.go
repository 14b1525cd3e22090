// =============================================================================
// Sales Report Engine - Master Backup
// =============================================================================
//
// The master backup is a single-sheet workbook holding every stored sale:
//
//   | ID | Timestamp | Brand | Model | Variant | Price | Qty | Total | Segment |
//
// Timestamp is epoch milliseconds so a restore reproduces the exact instant.
// Total and Segment are informational; Import recomputes both.
//
// =============================================================================

package backup

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// SheetName is the sheet written by Export and preferred by Import.
const SheetName = "Master Backup"

// Headers is the master backup header row.
var Headers = []string{"ID", "Timestamp", "Brand", "Model", "Variant", "Price", "Qty", "Total", "Segment"}

// Export writes recs as a master backup workbook. Rows are streamed so
// large stores do not build the whole sheet in memory.
func Export(w io.Writer, recs []types.SaleRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name backup sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open backup sheet: %w", err)
	}
	if err := sw.SetColWidth(2, 2, 16); err != nil {
		return err
	}
	if err := sw.SetColWidth(3, 5, 18); err != nil {
		return err
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{Height: 18}); err != nil {
		return fmt.Errorf("failed to write backup header: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.Timestamp,
			r.Brand,
			r.Model,
			r.Variant,
			r.UnitPrice.InexactFloat64(),
			r.Quantity,
			r.LineTotal().InexactFloat64(),
			r.Segment,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write backup row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to finish backup sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
