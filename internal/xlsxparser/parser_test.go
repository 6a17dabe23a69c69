package xlsxparser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

// workbook builds an in-memory XLSX from cell -> value assignments on Sheet1.
func workbook(t *testing.T, cells map[string]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadTemplateLayout(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"A1": "ID AWAL", "B1": 1001,
		"A2": " no invoice ", "B2": "Total Bayar", "C2": "AKUN BANK", "D2": "Memo", "E2": "Flag",
		"A3": "INV-1", "B3": 5000, "C3": "1101", "E3": true,
		"A4": "INV-2", "B4": 2.5, "C4": "PILIH AKUN BANK", "D4": "note",
		// row 5 left empty
		"A6": "INV-3", "B6": "1.000", "E6": false,
	})

	wb, err := Read(buf, ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", wb.SheetName)
	assert.Equal(t, int64(1001), wb.StartingTransactionID)
	assert.Equal(t, []string{"NO INVOICE", "TOTAL BAYAR", "AKUN BANK", "MEMO", "FLAG"}, wb.Dataset.Columns)
	require.Len(t, wb.Dataset.Rows, 3)

	first := wb.Dataset.Rows[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 3, first.SheetRow)
	assert.Equal(t, types.CellText, first.Get("NO INVOICE").Kind())
	assert.Equal(t, types.CellNumber, first.Get("TOTAL BAYAR").Kind())
	assert.Equal(t, "5000", first.Get("TOTAL BAYAR").DisplayString())
	assert.Equal(t, "1101", first.Get("AKUN BANK").DisplayString())
	assert.Equal(t, types.CellText, first.Get("AKUN BANK").Kind())
	assert.True(t, first.Get("MEMO").IsMissing())
	assert.Equal(t, "TRUE", first.Get("FLAG").DisplayString())

	second := wb.Dataset.Rows[1]
	assert.Equal(t, "2.5", second.Get("TOTAL BAYAR").DisplayString())
	assert.Equal(t, "note", second.Get("MEMO").DisplayString())

	third := wb.Dataset.Rows[2]
	assert.Equal(t, 3, third.Index)
	assert.Equal(t, 6, third.SheetRow)
	assert.Equal(t, types.CellText, third.Get("TOTAL BAYAR").Kind())
	assert.Equal(t, "1.000", third.Get("TOTAL BAYAR").DisplayString())
	assert.Equal(t, "FALSE", third.Get("FLAG").DisplayString())
}

func TestReadDateCellStaysNumeric(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"B1": 1,
		"A2": "TANGGAL",
		"A3": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	wb, err := Read(buf, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, wb.Dataset.Rows, 1)

	d, ok := wb.Dataset.Rows[0].Get("TANGGAL").Decimal()
	require.True(t, ok)
	assert.True(t, d.Round(6).Equal(decimal.NewFromInt(45292)), "got %s", d)
}

func TestReadDate1904(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	date1904 := true
	require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "TANGGAL"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", 44196))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := Read(buf, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, wb.Date1904)

	plain, err := Read(workbook(t, map[string]interface{}{"B1": 1, "A2": "TANGGAL", "A3": 1}), ReadOptions{})
	require.NoError(t, err)
	assert.False(t, plain.Date1904)
}

func TestReadHeaderEdgeCases(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"B1": 7,
		"A2": "MEMO", "C2": "memo", "D2": "RATE",
		"A3": "first", "B3": "orphan", "C3": "second", "D3": 1,
	})

	wb, err := Read(buf, ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"MEMO", "RATE"}, wb.Dataset.Columns)
	require.Len(t, wb.Dataset.Rows, 1)
	assert.Equal(t, "first", wb.Dataset.Rows[0].Get("MEMO").DisplayString())
	assert.Len(t, wb.Dataset.Rows[0].Cells, 2)
}

func TestReadStartingID(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int64
		wantErr bool
	}{
		{"integer", 1001, 1001, false},
		{"integral float", 12.0, 12, false},
		{"padded text", " 42 ", 42, false},
		{"negative", -3, -3, false},
		{"fraction", 10.5, 0, true},
		{"word", "abc", 0, true},
		{"bool", true, 0, true},
		{"missing", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := map[string]interface{}{"A2": "MEMO", "A3": "x"}
			if tt.value != nil {
				cells["B1"] = tt.value
			}

			wb, err := Read(workbook(t, cells), ReadOptions{})
			if tt.wantErr {
				var idErr *InvalidStartingIDError
				require.True(t, errors.As(err, &idErr), "want *InvalidStartingIDError, got %v", err)
				assert.Equal(t, "B1", idErr.Cell)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wb.StartingTransactionID)
		})
	}
}

func TestReadCustomLayout(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"C1": 500,
		"A3": "MEMO",
		"A4": "row",
	})

	wb, err := Read(buf, ReadOptions{StartingIDCell: "C1", HeaderRow: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(500), wb.StartingTransactionID)
	require.Len(t, wb.Dataset.Rows, 1)
	assert.Equal(t, 4, wb.Dataset.Rows[0].SheetRow)
}

func TestReadNoHeaderRow(t *testing.T) {
	buf := workbook(t, map[string]interface{}{"B1": 1})

	_, err := Read(buf, ReadOptions{})
	assert.ErrorIs(t, err, ErrNoHeaderRow)
}

func TestReadSheetSelection(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Data", "B1", 9))
	require.NoError(t, f.SetCellValue("Data", "A2", "MEMO"))
	require.NoError(t, f.SetCellValue("Data", "A3", "from data"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	raw := buf.Bytes()

	wb, err := Read(bytes.NewReader(raw), ReadOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), wb.StartingTransactionID)
	assert.Equal(t, "from data", wb.Dataset.Rows[0].Get("MEMO").DisplayString())

	_, err = Read(bytes.NewReader(raw), ReadOptions{SheetName: "Missing"})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadNotAWorkbook(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("plain text")), ReadOptions{})
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")
	buf := workbook(t, map[string]interface{}{"B1": 3, "A2": "MEMO", "A3": "m"})
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	wb, err := ReadFile(path, DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(3), wb.StartingTransactionID)
}

func TestTypedCell(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		cellType excelize.CellType
		kind     types.CellKind
		display  string
	}{
		{"empty", "", excelize.CellTypeSharedString, types.CellMissing, ""},
		{"error", "#N/A", excelize.CellTypeError, types.CellMissing, ""},
		{"bool true", "1", excelize.CellTypeBool, types.CellText, "TRUE"},
		{"bool false", "0", excelize.CellTypeBool, types.CellText, "FALSE"},
		{"shared string", "007", excelize.CellTypeSharedString, types.CellText, "007"},
		{"inline string", "abc", excelize.CellTypeInlineString, types.CellText, "abc"},
		{"formula string", "x", excelize.CellTypeFormula, types.CellText, "x"},
		{"iso date", "2024-01-02T00:00:00Z", excelize.CellTypeDate, types.CellText, "2024-01-02T00:00:00Z"},
		{"unset number", "5000", excelize.CellTypeUnset, types.CellNumber, "5000"},
		{"float", "1234.50", excelize.CellTypeNumber, types.CellNumber, "1234.5"},
		{"exponent", "1.5E+3", excelize.CellTypeUnset, types.CellNumber, "1500"},
		{"not numeric", "n/a", excelize.CellTypeUnset, types.CellText, "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := typedCell(tt.raw, tt.cellType)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.display, got.DisplayString())
		})
	}
}
