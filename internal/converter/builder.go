// =============================================================================
// Accurate XML Converter - Transaction Builder
// =============================================================================
//
// This module derives one TransactionRecord per validated input row.
//
// FIELD DERIVATION:
//
//   | Record field     | Source                                    |
//   |------------------|-------------------------------------------|
//   | TransactionID    | starting id + zero-based row position     |
//   | InvoiceNumber    | NO INVOICE                                |
//   | GLAccount        | NO AKUN                                   |
//   | BankAccount      | AKUN BANK                                 |
//   | Amount           | TOTAL BAYAR / TOTAL TERIMA, as displayed  |
//   | Description      | DESCRIPTION, "" when missing              |
//   | Memo             | MEMO, "" when missing                     |
//   | Rate             | RATE trimmed, "1" when missing or blank   |
//   | TransactionDate  | see DateSource                            |
//
// Rows are neither filtered nor reordered and building never fails.
//
// =============================================================================

package converter

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

// DefaultRate is written when a row carries no exchange rate.
const DefaultRate = "1"

// DateLayout is the TRANSDATE format Accurate expects.
const DateLayout = "2006-01-02"

// DateSource selects how TransactionDate is filled.
type DateSource int

const (
	// DateSourceFixed gives every record BuildOptions.FixedDate.
	DateSourceFixed DateSource = iota

	// DateSourceColumn converts each row's TANGGAL, falling back to
	// BuildOptions.FixedDate when the cell is missing or unreadable.
	DateSourceColumn
)

// ParseDateSource maps the configuration value to a DateSource.
func ParseDateSource(s string) (DateSource, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "column":
		return DateSourceColumn, true
	case "fixed":
		return DateSourceFixed, true
	default:
		return DateSourceFixed, false
	}
}

func (d DateSource) String() string {
	if d == DateSourceColumn {
		return "column"
	}
	return "fixed"
}

// BuildOptions controls record derivation.
type BuildOptions struct {
	DateSource DateSource

	// FixedDate is a YYYY-MM-DD date.
	FixedDate string

	// Date1904 selects the 1904 date system for serial TANGGAL values.
	Date1904 bool
}

// Build derives records with the same transaction date on every record.
func Build(rows []types.InputRow, category types.Category, startingID int64, transactionDate string) []types.TransactionRecord {
	return BuildWithOptions(rows, category, startingID, BuildOptions{
		DateSource: DateSourceFixed,
		FixedDate:  transactionDate,
	})
}

// BuildWithOptions derives one record per row, in row order.
//
// PARAMETERS:
//   - rows: Validated input rows.
//   - category: Selects the amount column.
//   - startingID: TransactionID of the first record.
//   - opts: Transaction date policy.
//
// RETURNS:
//   - len(rows) records with strictly increasing ids.
func BuildWithOptions(rows []types.InputRow, category types.Category, startingID int64, opts BuildOptions) []types.TransactionRecord {
	amountColumn := category.AmountColumn()
	records := make([]types.TransactionRecord, len(rows))

	for i, row := range rows {
		records[i] = types.TransactionRecord{
			TransactionID:   startingID + int64(i),
			Category:        category,
			InvoiceNumber:   row.Get(types.ColumnInvoiceNumber).DisplayString(),
			GLAccount:       row.Get(types.ColumnAccountNumber).DisplayString(),
			BankAccount:     row.Get(types.ColumnBankAccount).DisplayString(),
			Amount:          row.Get(amountColumn).DisplayString(),
			Description:     row.Get(types.ColumnDescription).DisplayString(),
			Memo:            row.Get(types.ColumnMemo).DisplayString(),
			Rate:            rateOf(row.Get(types.ColumnRate)),
			TransactionDate: transactionDate(row, opts),
		}
	}
	return records
}

func rateOf(cell types.CellValue) string {
	rate := strings.TrimSpace(cell.DisplayString())
	if rate == "" {
		return DefaultRate
	}
	return rate
}

func transactionDate(row types.InputRow, opts BuildOptions) string {
	if opts.DateSource != DateSourceColumn {
		return opts.FixedDate
	}
	if date, ok := ParseCellDate(row.Get(types.ColumnDate), opts.Date1904); ok {
		return date.Format(DateLayout)
	}
	return opts.FixedDate
}

// =============================================================================
// DATE PARSING
// =============================================================================

// maxExcelSerial is the serial of 10000-01-01, past Excel's last date.
const maxExcelSerial = 2958466

// textDateLayouts are tried in order for TANGGAL cells stored as text.
// Day-first layouts come before month-first ones as the workbooks are
// Indonesian.
var textDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006/01/02",
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
}

// ParseCellDate interprets a date cell. Numbers are Excel serial dates in the
// workbook's date system; text is matched against common layouts.
func ParseCellDate(cell types.CellValue, date1904 bool) (time.Time, bool) {
	switch cell.Kind() {
	case types.CellNumber:
		d, _ := cell.Decimal()
		serial, _ := d.Float64()
		if serial < 1 || serial >= maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, false
		}
		return t, true

	case types.CellText:
		text := strings.TrimSpace(cell.DisplayString())
		for _, layout := range textDateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
