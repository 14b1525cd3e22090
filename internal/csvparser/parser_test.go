package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/config"
)

func settings(delim string) config.CSVSettings {
	return config.CSVSettings{Delimiter: delim, HeaderRows: 1, DataStartRow: 2, Encoding: "UTF-8"}
}

func TestParse_SniffsDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"comma", "Brand,Model,Qty\nSamsung,A15,2\n"},
		{"pipe", "Brand|Model|Qty\nSamsung|A15|2\n"},
		{"tab", "Brand\tModel\tQty\nSamsung\tA15\t2\n"},
		{"semicolon", "Brand;Model;Qty\nSamsung;A15;2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Parse(strings.NewReader(tt.input), settings("auto"))
			require.NoError(t, err)
			assert.Equal(t, []string{"Brand", "Model", "Qty"}, data.Headers)
			require.Equal(t, 1, data.RowCount())
			assert.Equal(t, "A15", data.Rows[0]["Model"])
		})
	}
}

func TestParse_RowsAndNumbers(t *testing.T) {
	input := "\ufeffBrand,,Qty\n  Vivo , Y28 ,1\n,,\nOppo,A3\n"
	data, err := Parse(strings.NewReader(input), settings(","))
	require.NoError(t, err)

	assert.Equal(t, []string{"Brand", "Column_2", "Qty"}, data.Headers)
	require.Equal(t, 2, data.RowCount())
	assert.Equal(t, "Vivo", data.Rows[0]["Brand"])
	assert.Equal(t, "Y28", data.Rows[0]["Column_2"])
	// Short rows fill missing columns with blanks.
	assert.Equal(t, "", data.Rows[1]["Qty"])
	// The blank third line is skipped but numbering follows the source.
	assert.Equal(t, []int{2, 4}, data.RowNumbers)
	assert.Len(t, data.RawRows, 2)
}

func TestFromRows_MultiLineHeaders(t *testing.T) {
	rows := [][]string{
		{"Unit", "", "Sale"},
		{"Price", "Qty", "Date"},
		{"note", "", ""},
		{"15999", "1", "2024-01-10"},
	}
	data, err := FromRows(rows, config.CSVSettings{HeaderRows: 2, DataStartRow: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"Unit Price", "Qty", "Sale Date"}, data.Headers)
	require.Equal(t, 1, data.RowCount())
	assert.Equal(t, "15999", data.Rows[0]["Unit Price"])
	assert.Equal(t, []int{4}, data.RowNumbers)
}

func TestFromRows_Errors(t *testing.T) {
	_, err := FromRows(nil, settings(","))
	assert.Error(t, err)

	_, err = FromRows([][]string{{"Brand"}}, config.CSVSettings{HeaderRows: 3})
	assert.Error(t, err)
}

func TestParse_Encodings(t *testing.T) {
	input := "Brand,Model\nCaf\xe9,X\n"
	s := settings(",")
	s.Encoding = "windows-1252"
	data, err := Parse(strings.NewReader(input), s)
	require.NoError(t, err)
	assert.Equal(t, "Café", data.Rows[0]["Brand"])

	s.Encoding = "EBCDIC"
	_, err = Parse(strings.NewReader(input), s)
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("Brand|Qty\nRealme|3\n"), 0o644))

	data, err := ParseFile(path, settings("pipe"))
	require.NoError(t, err)
	assert.Equal(t, path, data.SourceFile)
	assert.Equal(t, "3", data.Rows[0]["Qty"])

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), settings(","))
	assert.Error(t, err)
}
