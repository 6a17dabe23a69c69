package converter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

func row(index int, cells map[string]types.CellValue) types.InputRow {
	return types.InputRow{Index: index, SheetRow: index + 2, Cells: cells}
}

func TestBuildAssignsSequentialIDs(t *testing.T) {
	rows := make([]types.InputRow, 10)
	for i := range rows {
		rows[i] = row(i+1, map[string]types.CellValue{types.ColumnInvoiceNumber: types.Text("INV")})
	}

	records := Build(rows, types.OutgoingPayment, 1001, "2025-10-15")
	require.Len(t, records, 10)
	for i, r := range records {
		assert.Equal(t, int64(1001+i), r.TransactionID)
		assert.Equal(t, "2025-10-15", r.TransactionDate)
		assert.Equal(t, types.OutgoingPayment, r.Category)
	}
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build(nil, types.OutgoingPayment, 1, "2025-01-01"))
}

func TestBuildFieldDerivation(t *testing.T) {
	rows := []types.InputRow{row(1, map[string]types.CellValue{
		types.ColumnInvoiceNumber: types.Text("INV1"),
		types.ColumnAccountNumber: types.Number(decimal.NewFromInt(101)),
		types.ColumnBankAccount:   types.Text("BCA"),
		types.ColumnTotalPaid:     types.Number(decimal.NewFromInt(5000)),
		types.ColumnTotalReceived: types.Number(decimal.NewFromInt(9999)),
		types.ColumnDescription:   types.Missing(),
		types.ColumnRate:          types.Text("   "),
	})}

	r := Build(rows, types.OutgoingPayment, 1001, "2025-10-15")[0]
	assert.Equal(t, "INV1", r.InvoiceNumber)
	assert.Equal(t, "101", r.GLAccount)
	assert.Equal(t, "BCA", r.BankAccount)
	assert.Equal(t, "5000", r.Amount)
	assert.Equal(t, "", r.Description)
	assert.Equal(t, "", r.Memo)
	assert.Equal(t, DefaultRate, r.Rate)

	deposit := Build(rows, types.IncomingDeposit, 1, "2025-10-15")[0]
	assert.Equal(t, "9999", deposit.Amount)
}

func TestBuildRate(t *testing.T) {
	tests := []struct {
		name string
		cell types.CellValue
		want string
	}{
		{"missing", types.Missing(), "1"},
		{"blank", types.Text(" \t"), "1"},
		{"text", types.Text(" 2.5 "), "2.5"},
		{"number", types.Number(decimal.RequireFromString("14500.25")), "14500.25"},
		{"zero", types.Number(decimal.Zero), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []types.InputRow{row(1, map[string]types.CellValue{types.ColumnRate: tt.cell})}
			assert.Equal(t, tt.want, Build(rows, types.IncomingDeposit, 1, "")[0].Rate)
		})
	}
}

func TestBuildDateFromColumn(t *testing.T) {
	opts := BuildOptions{DateSource: DateSourceColumn, FixedDate: "2025-10-15"}
	tests := []struct {
		name string
		cell types.CellValue
		want string
	}{
		{"excel serial", types.Number(decimal.NewFromInt(45292)), "2024-01-01"},
		{"serial with time", types.Number(decimal.RequireFromString("45292.75")), "2024-01-01"},
		{"iso text", types.Text("2024-03-05"), "2024-03-05"},
		{"day first slash", types.Text("05/03/2024"), "2024-03-05"},
		{"day first dash", types.Text("5-3-2024"), "2024-03-05"},
		{"dotted", types.Text("05.03.2024"), "2024-03-05"},
		{"month name", types.Text("5 Mar 2024"), "2024-03-05"},
		{"iso datetime", types.Text("2024-03-05 10:30:00"), "2024-03-05"},
		{"missing falls back", types.Missing(), "2025-10-15"},
		{"garbage falls back", types.Text("besok"), "2025-10-15"},
		{"zero serial falls back", types.Number(decimal.Zero), "2025-10-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []types.InputRow{row(1, map[string]types.CellValue{types.ColumnDate: tt.cell})}
			assert.Equal(t, tt.want, BuildWithOptions(rows, types.OutgoingPayment, 1, opts)[0].TransactionDate)
		})
	}
}

func TestBuildDate1904(t *testing.T) {
	rows := []types.InputRow{row(1, map[string]types.CellValue{types.ColumnDate: types.Number(decimal.NewFromInt(44196))})}
	opts := BuildOptions{DateSource: DateSourceColumn, Date1904: true}
	assert.Equal(t, "2025-01-01", BuildWithOptions(rows, types.OutgoingPayment, 1, opts)[0].TransactionDate)
}

func TestBuildFixedIgnoresColumn(t *testing.T) {
	rows := []types.InputRow{row(1, map[string]types.CellValue{types.ColumnDate: types.Text("2024-03-05")})}
	records := BuildWithOptions(rows, types.OutgoingPayment, 1, BuildOptions{DateSource: DateSourceFixed, FixedDate: "2025-10-15"})
	assert.Equal(t, "2025-10-15", records[0].TransactionDate)
}

func TestParseDateSource(t *testing.T) {
	s, ok := ParseDateSource("Column")
	assert.True(t, ok)
	assert.Equal(t, DateSourceColumn, s)
	assert.Equal(t, "column", s.String())

	s, ok = ParseDateSource("fixed")
	assert.True(t, ok)
	assert.Equal(t, DateSourceFixed, s)

	_, ok = ParseDateSource("sheet")
	assert.False(t, ok)
}

func TestParseCellDate(t *testing.T) {
	got, ok := ParseCellDate(types.Number(decimal.NewFromInt(45658)), false)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", got.Format(DateLayout))

	got, ok = ParseCellDate(types.Number(decimal.NewFromInt(44196)), true)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", got.Format(DateLayout))

	_, ok = ParseCellDate(types.Number(decimal.NewFromInt(99999999)), false)
	assert.False(t, ok)
}
