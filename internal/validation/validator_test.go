package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

func dataset(columns []string, rows ...map[string]types.CellValue) types.Dataset {
	ds := types.Dataset{Columns: columns}
	for i, cells := range rows {
		ds.Rows = append(ds.Rows, types.InputRow{Index: i + 1, SheetRow: i + 3, Cells: cells})
	}
	return ds
}

func TestValidateMissingColumns(t *testing.T) {
	ds := dataset(
		[]string{types.ColumnInvoiceNumber, types.ColumnAccountNumber, types.ColumnTotalPaid, types.ColumnBankAccount},
		map[string]types.CellValue{types.ColumnBankAccount: types.Missing()},
	)

	result := Validate(ds, types.OutgoingPayment)
	require.False(t, result.IsValid())
	require.NotNil(t, result.Missing)
	assert.Nil(t, result.Invalid, "row checks must not run when columns are missing")
	assert.Equal(t, 0, result.RowsChecked)
	assert.Equal(t, []string{
		types.ColumnDate, types.ColumnAccountName, types.ColumnDescription, types.ColumnMemo,
		types.ColumnChequeNumber, types.ColumnPayee, types.ColumnBankName,
	}, result.Missing.Columns)

	var missingErr *MissingColumnsError
	assert.True(t, errors.As(result.Err(), &missingErr))
	assert.Contains(t, result.Err().Error(), "CHEQUE NO")
}

func TestValidateDepositNeedsRate(t *testing.T) {
	columns := make([]string, 0)
	for _, c := range types.IncomingDeposit.RequiredColumns() {
		if c != types.ColumnRate {
			columns = append(columns, c)
		}
	}

	result := Validate(dataset(columns), types.IncomingDeposit)
	require.NotNil(t, result.Missing)
	assert.Equal(t, []string{types.ColumnRate}, result.Missing.Columns)

	// The payment set does not need RATE but does need TOTAL BAYAR.
	result = Validate(dataset(types.OutgoingPayment.RequiredColumns()), types.OutgoingPayment)
	assert.True(t, result.IsValid())
}

func TestValidateInvalidRows(t *testing.T) {
	ds := dataset(types.OutgoingPayment.RequiredColumns(),
		map[string]types.CellValue{types.ColumnBankAccount: types.Text("1101"), types.ColumnInvoiceNumber: types.Text("INV-1")},
		map[string]types.CellValue{types.ColumnBankAccount: types.Text("  "), types.ColumnInvoiceNumber: types.Text("INV-2")},
		map[string]types.CellValue{types.ColumnBankAccount: types.Text(" PILIH AKUN BANK ")},
		map[string]types.CellValue{types.ColumnBankAccount: types.Number(decimal.NewFromInt(1102))},
		map[string]types.CellValue{},
	)

	result := Validate(ds, types.OutgoingPayment)
	require.False(t, result.IsValid())
	assert.Nil(t, result.Missing)
	assert.Equal(t, 5, result.RowsChecked)
	require.NotNil(t, result.Invalid)

	assert.Equal(t, []InvalidRow{
		{Index: 2, SheetRow: 4, InvoiceNumber: "INV-2", Value: ""},
		{Index: 3, SheetRow: 5, Value: UnselectedBankAccount},
		{Index: 5, SheetRow: 7, Value: ""},
	}, result.Invalid.Rows)

	var rowsErr *InvalidRowsWarning
	assert.True(t, errors.As(result.Err(), &rowsErr))
	assert.Len(t, rowsErr.Rows, 3)
}

func TestValidateValid(t *testing.T) {
	ds := dataset(types.IncomingDeposit.RequiredColumns(),
		map[string]types.CellValue{types.ColumnBankAccount: types.Text("BCA")},
	)

	result := Validate(ds, types.IncomingDeposit)
	assert.True(t, result.IsValid())
	assert.NoError(t, result.Err())
	assert.Equal(t, "No validation errors.", FormatErrors(result))
}

func TestFormatErrors(t *testing.T) {
	missing := &Result{Missing: &MissingColumnsError{Category: types.OutgoingPayment, Columns: []string{"MEMO", "PAYEE"}}}
	out := FormatErrors(missing)
	assert.Contains(t, out, "2 required column(s) missing for Pembayaran")
	assert.Contains(t, out, "1. MEMO")
	assert.Contains(t, out, "2. PAYEE")

	invalid := &Result{Invalid: &InvalidRowsWarning{Rows: []InvalidRow{{Index: 4, SheetRow: 6, InvoiceNumber: "INV-4", Value: ""}}}}
	out = FormatErrors(invalid)
	assert.Contains(t, out, "1 row(s)")
	assert.Contains(t, out, "Row 4 (sheet row 6)")
	assert.Contains(t, out, "INV-4")
}
