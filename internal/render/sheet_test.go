package render

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/salesreport/internal/types"
)

func TestWriteSheet(t *testing.T) {
	table := &Table{
		Title:    "Samsung Hub",
		Subtitle: "January 2024",
		Columns: []types.ColumnSpec{
			{Label: "Segment", WidthUnits: 80, Kind: types.ColumnKey},
			{Label: "Apple", WidthUnits: 60, Kind: types.ColumnQuantity},
			{Label: "Total", WidthUnits: 60, Kind: types.ColumnQuantity},
		},
		Rows: [][]types.CellValue{
			{types.Text("70K - <100K"), types.Int(2), types.Int(2)},
			{types.Text("<10K"), types.Int(0), types.Int(0)},
		},
		Totals:            []types.CellValue{types.Text("TOTAL"), types.Int(2), types.Int(2)},
		Placeholder:       "-",
		ZeroAsPlaceholder: true,
		Facts: []Fact{
			{Row: "70K - <100K", Column: "Apple", Quantity: 2, Value: decimal.NewFromInt(160000)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSheet(table, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Samsung Hub", rows[0][0])
	assert.Equal(t, []string{"Segment", "Apple", "Total"}, rows[2])
	assert.Equal(t, []string{"70K - <100K", "2", "2"}, rows[3])
	assert.Equal(t, []string{"<10K", "-", "-"}, rows[4])
	assert.Equal(t, []string{"TOTAL", "2", "2"}, rows[5])

	facts, err := f.GetRows(factsSheet)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, []string{"70K - <100K", "Apple", "2", "160000"}, facts[1])

	found := false
	for _, dn := range f.GetDefinedName() {
		if dn.Name == "_xlnm.Print_Titles" {
			found = true
			assert.Contains(t, dn.RefersTo, "$3:$3")
		}
	}
	assert.True(t, found, "print titles defined")
}
