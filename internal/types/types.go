// =============================================================================
// Accurate XML Converter - Shared Types
// =============================================================================
//
// This package contains the domain types shared by the reader, validator,
// builder and XML writer packages. Keeping them here avoids import cycles:
//   - xlsxparser / csvparser produce Dataset values
//   - validation inspects Dataset values
//   - converter turns InputRows into TransactionRecords
//   - xmlwriter renders TransactionRecords
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// TRANSACTION CATEGORY
// =============================================================================

// Category selects which Accurate transaction shape is generated.
type Category int

const (
	// OutgoingPayment produces OTHERPAYMENT blocks ("Pembayaran").
	OutgoingPayment Category = iota + 1

	// IncomingDeposit produces OTHERDEPOSIT blocks ("Penerimaan").
	IncomingDeposit
)

// Column names, already normalized (trimmed, upper-cased).
const (
	ColumnInvoiceNumber = "NO INVOICE"
	ColumnDate          = "TANGGAL"
	ColumnAccountNumber = "NO AKUN"
	ColumnAccountName   = "NAMA AKUN"
	ColumnTotalPaid     = "TOTAL BAYAR"
	ColumnTotalReceived = "TOTAL TERIMA"
	ColumnDescription   = "DESCRIPTION"
	ColumnMemo          = "MEMO"
	ColumnChequeNumber  = "CHEQUE NO"
	ColumnPayee         = "PAYEE"
	ColumnBankAccount   = "AKUN BANK"
	ColumnBankName      = "NAMA BANK"
	ColumnRate          = "RATE"
)

// ParseCategory maps user input to a Category.
// Both the Indonesian labels used by the spreadsheet templates and the
// Accurate tag names are accepted, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pembayaran", "payment", "outgoing", "otherpayment", "other payment":
		return OutgoingPayment, nil
	case "penerimaan", "receipt", "deposit", "incoming", "otherdeposit", "other receipt":
		return IncomingDeposit, nil
	default:
		return 0, fmt.Errorf("unknown transaction category %q (want pembayaran or penerimaan)", s)
	}
}

// String returns the Indonesian label of the category.
func (c Category) String() string {
	switch c {
	case OutgoingPayment:
		return "Pembayaran"
	case IncomingDeposit:
		return "Penerimaan"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	return c == OutgoingPayment || c == IncomingDeposit
}

// RequiredColumns returns the columns a dataset must contain for this category,
// in the order they are reported when missing.
func (c Category) RequiredColumns() []string {
	switch c {
	case OutgoingPayment:
		return []string{
			ColumnInvoiceNumber, ColumnDate, ColumnAccountNumber, ColumnAccountName,
			ColumnTotalPaid, ColumnDescription, ColumnMemo, ColumnChequeNumber,
			ColumnPayee, ColumnBankAccount, ColumnBankName,
		}
	case IncomingDeposit:
		return []string{
			ColumnInvoiceNumber, ColumnDate, ColumnAccountNumber, ColumnAccountName,
			ColumnTotalReceived, ColumnDescription, ColumnMemo, ColumnBankAccount,
			ColumnBankName, ColumnRate,
		}
	default:
		return nil
	}
}

// AmountColumn is the column whose value becomes GLAMOUNT and JVAMOUNT.
func (c Category) AmountColumn() string {
	if c == IncomingDeposit {
		return ColumnTotalReceived
	}
	return ColumnTotalPaid
}

// ElementName is the XML tag of one transaction block.
func (c Category) ElementName() string {
	if c == IncomingDeposit {
		return "OTHERDEPOSIT"
	}
	return "OTHERPAYMENT"
}

// TransType is the TRANSTYPE text Accurate expects.
func (c Category) TransType() string {
	if c == IncomingDeposit {
		return "other receipt"
	}
	return "other payment"
}

// FileStem is the base name of the generated file, without extension.
func (c Category) FileStem() string {
	if c == IncomingDeposit {
		return "penerimaan_accurate"
	}
	return "pembayaran_accurate"
}

// FileName is the default download name of the generated file.
func (c Category) FileName() string {
	return c.FileStem() + ".xml"
}

// =============================================================================
// INPUT DATA
// =============================================================================

// InputRow is one data row keyed by normalized column name.
type InputRow struct {
	// Index is the 1-based position of the row in the dataset.
	Index int

	// SheetRow is the 1-based row number in the source sheet.
	SheetRow int

	// Cells holds every dataset column; columns without a value are Missing.
	Cells map[string]CellValue
}

// Get returns the cell for column, or Missing when the column is absent.
func (r InputRow) Get(column string) CellValue {
	if v, ok := r.Cells[column]; ok {
		return v
	}
	return Missing()
}

// Dataset is the parsed tabular data below the header row.
type Dataset struct {
	// Columns are the normalized header names in sheet order.
	Columns []string

	// Rows are the data rows in sheet order.
	Rows []InputRow
}

// HasColumn reports whether the dataset header contains column.
func (d Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// NormalizeColumn trims and upper-cases a header cell.
func NormalizeColumn(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// =============================================================================
// OUTPUT DATA
// =============================================================================

// TransactionRecord is the fully derived content of one XML transaction block.
type TransactionRecord struct {
	TransactionID   int64
	Category        Category
	InvoiceNumber   string
	GLAccount       string
	BankAccount     string
	Amount          string
	Description     string
	Memo            string
	Rate            string
	TransactionDate string
}
