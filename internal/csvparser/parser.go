// =============================================================================
// Accurate XML Converter - CSV Reader
// =============================================================================
//
// This module reads CSV exports of the payment/receipt workbook. The layout
// is the same as the XLSX template: the starting transaction id sits in the
// configured cell (B1 by default), the header on the configured row and the
// data below it.
//
// CELL TYPING:
//   CSV carries no cell types. A field becomes a Number only when its text is
//   already a canonical decimal ("5000", "2.5", "-3"), so the text written
//   to the XML is always exactly what the file contained. Fields such as
//   "007", "1.000" or "1e3" stay Text. Empty fields are Missing.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/xlsxparser"
)

const utf8BOM = "\ufeff"

// Settings controls CSV parsing.
type Settings struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// Layout locates the starting id cell and the header row.
	Layout xlsxparser.ReadOptions
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens and parses a CSV file.
func ParseFile(path string, settings Settings) (*xlsxparser.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(f, settings)
}

// Parse reads a CSV stream laid out like the XLSX template.
//
// PARAMETERS:
//   - r: The CSV bytes. A leading UTF-8 byte order mark is ignored.
//   - settings: Delimiter and layout.
//
// RETURNS:
//   - The starting transaction id and the typed dataset.
//   - *xlsxparser.InvalidStartingIDError, xlsxparser.ErrNoHeaderRow, or a
//     read error.
func Parse(r io.Reader, settings Settings) (*xlsxparser.Workbook, error) {
	layout := settings.Layout.WithDefaults()

	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}

	col, row, err := excelize.CellNameToCoordinates(layout.StartingIDCell)
	if err != nil {
		return nil, fmt.Errorf("invalid starting id cell %q: %w", layout.StartingIDCell, err)
	}
	startingID, err := xlsxparser.StartingID(layout.StartingIDCell, fieldAt(records, row-1, col-1))
	if err != nil {
		return nil, err
	}

	dataset, err := buildDataset(records, layout.HeaderRow)
	if err != nil {
		return nil, err
	}

	return &xlsxparser.Workbook{
		StartingTransactionID: startingID,
		Dataset:               dataset,
	}, nil
}

// configureReader applies the settings to the encoding/csv reader.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = ','
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Spreadsheet exports pad short rows inconsistently.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

func fieldAt(records [][]string, row, col int) types.CellValue {
	if row < 0 || row >= len(records) || col < 0 || col >= len(records[row]) {
		return types.Missing()
	}
	return typedField(records[row][col])
}

func buildDataset(records [][]string, headerRow int) (types.Dataset, error) {
	if len(records) < headerRow {
		return types.Dataset{}, xlsxparser.ErrNoHeaderRow
	}

	var ds types.Dataset
	indexes := make(map[string]int)
	for i, field := range records[headerRow-1] {
		name := types.NormalizeColumn(field)
		if name == "" {
			continue
		}
		if _, dup := indexes[name]; dup {
			continue
		}
		indexes[name] = i
		ds.Columns = append(ds.Columns, name)
	}
	if len(ds.Columns) == 0 {
		return types.Dataset{}, xlsxparser.ErrNoHeaderRow
	}

	for offset, record := range records[headerRow:] {
		cells := make(map[string]types.CellValue, len(ds.Columns))
		empty := true
		for _, name := range ds.Columns {
			value := types.Missing()
			if i := indexes[name]; i < len(record) {
				value = typedField(record[i])
			}
			if !value.IsBlank() {
				empty = false
			}
			cells[name] = value
		}
		if empty {
			continue
		}
		ds.Rows = append(ds.Rows, types.InputRow{
			Index:    len(ds.Rows) + 1,
			SheetRow: headerRow + 1 + offset,
			Cells:    cells,
		})
	}
	return ds, nil
}

// typedField types one CSV field; see the package header for the rules.
func typedField(field string) types.CellValue {
	if field == "" {
		return types.Missing()
	}
	d, err := decimal.NewFromString(field)
	if err != nil || d.String() != field {
		return types.Text(field)
	}
	return types.Number(d)
}
