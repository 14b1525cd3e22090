// =============================================================================
// Sales Report Engine - Tabular Import Parser
// =============================================================================
//
// This module turns delimited text (and the row grids read from workbooks)
// into header-keyed rows for the importer. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon) or sniffing them
//   - Multi-line headers
//   - Custom data start rows
//   - Windows-1252 / ISO-8859-1 exports from older spreadsheet tools
//   - Quoted fields with escape characters
//
// Every data row keeps its 1-based source row number so import problems can
// point back at the file.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/salesreport/internal/config"
)

// =============================================================================
// DATA STRUCTURE
// =============================================================================

// Data is a parsed table.
type Data struct {
	// Headers are the cleaned column names. Blank headers become Column_N.
	Headers []string

	// Rows map header -> trimmed value. Empty rows are dropped.
	Rows []map[string]string

	// RawRows are the data rows as read, aligned with Rows.
	RawRows [][]string

	// RowNumbers are the 1-based source rows, aligned with Rows.
	RowNumbers []int

	SourceFile string
}

// RowCount is the number of data rows.
func (d *Data) RowCount() int { return len(d.Rows) }

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a delimited file from disk.
func ParseFile(filePath string, settings config.CSVSettings) (*Data, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := Parse(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// Parse reads delimited text.
//
// PARSING PROCESS:
//  1. Decode the input to UTF-8 when another encoding is configured
//  2. Sniff the delimiter from the first line when set to "auto"
//  3. Read every record, allowing ragged rows
//  4. Hand the grid to FromRows for header and row extraction
func Parse(r io.Reader, settings config.CSVSettings) (*Data, error) {
	dec, err := decoder(settings.Encoding)
	if err != nil {
		return nil, err
	}
	reader := bufio.NewReader(r)
	if dec != nil {
		reader = bufio.NewReader(transform.NewReader(reader, dec.NewDecoder()))
	}

	if strings.EqualFold(settings.Delimiter, "auto") || settings.Delimiter == "" {
		first, _ := reader.Peek(4096)
		settings.Delimiter = sniffDelimiter(string(first))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return FromRows(allRows, settings)
}

// FromRows extracts headers and data rows from a grid already in memory,
// such as the rows of a workbook sheet.
func FromRows(allRows [][]string, settings config.CSVSettings) (*Data, error) {
	if len(allRows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	data := &Data{Headers: headers}
	extractDataRows(data, allRows, settings)
	return data, nil
}

// decoder maps an encoding name to a decoder. UTF-8 returns nil.
func decoder(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// sniffDelimiter picks the most frequent candidate on the first line.
func sniffDelimiter(sample string) string {
	line, _, _ := strings.Cut(sample, "\n")
	best, bestCount := ",", 0
	for _, d := range []string{",", "|", "\t", ";"} {
		if n := strings.Count(line, d); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// configureReader applies delimiter and leniency settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports from phones and older tools are often ragged or loosely quoted.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders merges the configured header rows.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Unit", "",    "Sale"
//	Row 2: "Price", "Qty", "Date"
//	Result: "Unit Price", "Qty", "Sale Date"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers, strips a UTF-8 BOM and names blank ones.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// extractDataRows fills data with the non-empty rows after the headers.
func extractDataRows(data *Data, allRows [][]string, settings config.CSVSettings) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	// DataStartRow is 1-indexed.
	startIndex := settings.DataStartRow - 1
	if startIndex < headerRows {
		startIndex = headerRows
	}

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(data.Headers))
		for colIndex, header := range data.Headers {
			if colIndex < len(row) {
				rowMap[header] = strings.TrimSpace(row[colIndex])
			} else {
				rowMap[header] = ""
			}
		}

		data.Rows = append(data.Rows, rowMap)
		data.RawRows = append(data.RawRows, row)
		data.RowNumbers = append(data.RowNumbers, rowIndex+1)
	}
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
