// =============================================================================
// Accurate XML Converter - XLSX Reader
// =============================================================================
//
// This module reads the payment/receipt workbook that feeds the converter.
//
// WORKBOOK LAYOUT (defaults, configurable through ReadOptions):
//
//   |     | A            | B        | C       | ...
//   |-----|--------------|----------|---------|
//   | 1   | (label)      | 1001     |         |   <- B1: starting transaction id
//   | 2   | NO INVOICE   | TANGGAL  | NO AKUN |   <- header row
//   | 3   | INV-1        | 45292    | 110-01  |   <- data rows
//   | ... |              |          |         |
//
// Cells are read raw and typed from their stored cell type, so numbers keep
// their exact stored digits and never pass through display formatting.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

var (
	// ErrNoHeaderRow means the sheet ends before the header row or the
	// header row is empty.
	ErrNoHeaderRow = errors.New("sheet has no header row")

	// ErrSheetNotFound means the configured sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// InvalidStartingIDError rejects a workbook whose starting id cell does not
// hold an integer.
type InvalidStartingIDError struct {
	Cell  string
	Value string
}

func (e *InvalidStartingIDError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("starting transaction id cell %s is empty", e.Cell)
	}
	return fmt.Sprintf("starting transaction id in %s is not an integer: %q", e.Cell, e.Value)
}

// =============================================================================
// READ OPTIONS
// =============================================================================

// ReadOptions describes where the reader finds its inputs.
type ReadOptions struct {
	// SheetName selects the sheet; empty means the first sheet.
	SheetName string

	// StartingIDCell holds the first transaction id. Default: "B1"
	StartingIDCell string

	// HeaderRow is the 1-based header row. Default: 2
	HeaderRow int
}

// DefaultReadOptions returns the standard template layout.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{StartingIDCell: "B1", HeaderRow: 2}
}

// WithDefaults fills unset fields from DefaultReadOptions.
func (o ReadOptions) WithDefaults() ReadOptions {
	def := DefaultReadOptions()
	if o.StartingIDCell == "" {
		o.StartingIDCell = def.StartingIDCell
	}
	if o.HeaderRow <= 0 {
		o.HeaderRow = def.HeaderRow
	}
	return o
}

// Workbook is the parsed input of one conversion.
type Workbook struct {
	SheetName             string
	StartingTransactionID int64
	Dataset               types.Dataset

	// Date1904 reports that serial dates count from 1904-01-01.
	Date1904 bool
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadFile opens and reads an XLSX file.
func ReadFile(path string, opts ReadOptions) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses an XLSX stream.
//
// PARAMETERS:
//   - r: The workbook bytes.
//   - opts: Sheet and layout selection; zero fields take the defaults.
//
// RETURNS:
//   - The starting transaction id and the typed dataset.
//   - *InvalidStartingIDError when the id cell is not an integer,
//     ErrSheetNotFound, ErrNoHeaderRow, or an open/read error.
func Read(r io.Reader, opts ReadOptions) (*Workbook, error) {
	opts = opts.WithDefaults()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := selectSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	startingID, err := readStartingID(f, sheet, opts.StartingIDCell)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	dataset, err := buildDataset(f, sheet, rows, opts.HeaderRow)
	if err != nil {
		return nil, err
	}

	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook properties: %w", err)
	}

	return &Workbook{
		SheetName:             sheet,
		StartingTransactionID: startingID,
		Dataset:               dataset,
		Date1904:              props.Date1904 != nil && *props.Date1904,
	}, nil
}

func selectSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets: %w", ErrSheetNotFound)
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, name, strings.Join(sheets, ", "))
}

func readStartingID(f *excelize.File, sheet, cell string) (int64, error) {
	value, err := readCell(f, sheet, cell)
	if err != nil {
		return 0, err
	}
	return StartingID(cell, value)
}

// StartingID interprets the starting transaction id cell. Numbers must be
// integral and text must trim to a base-10 integer.
func StartingID(cell string, value types.CellValue) (int64, error) {
	invalid := &InvalidStartingIDError{Cell: cell, Value: value.DisplayString()}
	switch value.Kind() {
	case types.CellNumber:
		d, _ := value.Decimal()
		if !d.IsInteger() || !d.BigInt().IsInt64() {
			return 0, invalid
		}
		return d.IntPart(), nil
	case types.CellText:
		id, err := strconv.ParseInt(strings.TrimSpace(value.DisplayString()), 10, 64)
		if err != nil {
			return 0, invalid
		}
		return id, nil
	default:
		return 0, invalid
	}
}

func readCell(f *excelize.File, sheet, cell string) (types.CellValue, error) {
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Missing(), fmt.Errorf("failed to read cell %s: %w", cell, err)
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return types.Missing(), fmt.Errorf("failed to read cell %s: %w", cell, err)
	}
	return typedCell(raw, cellType), nil
}

// buildDataset turns the header row and the rows below it into a Dataset.
// Empty header cells are skipped, a repeated header keeps its first column
// and rows without any value are dropped.
func buildDataset(f *excelize.File, sheet string, rows [][]string, headerRow int) (types.Dataset, error) {
	if len(rows) < headerRow {
		return types.Dataset{}, ErrNoHeaderRow
	}

	type column struct {
		name  string
		index int
	}
	var columns []column
	seen := make(map[string]bool)

	for i, raw := range rows[headerRow-1] {
		value, err := typedAt(f, sheet, raw, i, headerRow)
		if err != nil {
			return types.Dataset{}, err
		}
		name := types.NormalizeColumn(value.DisplayString())
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, column{name: name, index: i})
	}
	if len(columns) == 0 {
		return types.Dataset{}, ErrNoHeaderRow
	}

	ds := types.Dataset{Columns: make([]string, len(columns))}
	for i, c := range columns {
		ds.Columns[i] = c.name
	}

	for offset, raw := range rows[headerRow:] {
		sheetRow := headerRow + 1 + offset
		cells := make(map[string]types.CellValue, len(columns))
		empty := true

		for _, c := range columns {
			value := types.Missing()
			if c.index < len(raw) {
				var err error
				if value, err = typedAt(f, sheet, raw[c.index], c.index, sheetRow); err != nil {
					return types.Dataset{}, err
				}
			}
			if !value.IsBlank() {
				empty = false
			}
			cells[c.name] = value
		}

		if empty {
			continue
		}
		ds.Rows = append(ds.Rows, types.InputRow{
			Index:    len(ds.Rows) + 1,
			SheetRow: sheetRow,
			Cells:    cells,
		})
	}

	return ds, nil
}

// typedAt types the raw value at zero-based column col of 1-based row.
func typedAt(f *excelize.File, sheet, raw string, col, row int) (types.CellValue, error) {
	if raw == "" {
		return types.Missing(), nil
	}
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return types.Missing(), err
	}
	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return types.Missing(), fmt.Errorf("failed to read cell %s: %w", name, err)
	}
	return typedCell(raw, cellType), nil
}

// =============================================================================
// CELL TYPING
// =============================================================================

// typedCell maps a raw stored value and its cell type to a CellValue.
//
//   - empty                      -> Missing
//   - error (#N/A, #DIV/0!, ...) -> Missing
//   - boolean                    -> Text "TRUE" / "FALSE"
//   - string, formula string     -> Text
//   - ISO date (t="d")           -> Text of the stored value
//   - number                     -> Number, Text if the digits do not parse
func typedCell(raw string, cellType excelize.CellType) types.CellValue {
	if raw == "" {
		return types.Missing()
	}

	switch cellType {
	case excelize.CellTypeError:
		return types.Missing()
	case excelize.CellTypeBool:
		switch raw {
		case "1":
			return types.Text("TRUE")
		case "0":
			return types.Text("FALSE")
		}
		return types.Text(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeDate:
		return types.Text(raw)
	default:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return types.Text(raw)
		}
		return types.Number(d)
	}
}
