// =============================================================================
// Accurate XML Converter - Validation Engine
// =============================================================================
//
// This module decides whether a dataset may be converted.
//
// VALIDATION STRATEGY:
//   1. Schema: every required column of the category must be present. When
//      any is missing, validation stops here and names all of them.
//   2. Rows: every row must carry a chosen bank account (AKUN BANK). All
//      offending rows are collected so they can be fixed in one pass.
//
// Nothing is serialized unless both steps pass.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

// UnselectedBankAccount is the placeholder the workbook template shows in the
// AKUN BANK dropdown before a bank account is picked.
const UnselectedBankAccount = "PILIH AKUN BANK"

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// MissingColumnsError lists the required columns absent from the header, in
// the category's required order.
type MissingColumnsError struct {
	Category types.Category
	Columns  []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns for %s: %s", e.Category, strings.Join(e.Columns, ", "))
}

// InvalidRow is one row rejected by the bank account check.
type InvalidRow struct {
	// Index is the 1-based position of the row in the dataset.
	Index int `json:"index"`

	// SheetRow is the 1-based row number in the source sheet.
	SheetRow int `json:"sheet_row"`

	// InvoiceNumber helps locate the row; empty when the cell is missing.
	InvoiceNumber string `json:"invoice_number"`

	// Value is the AKUN BANK text that was rejected.
	Value string `json:"value"`
}

// InvalidRowsWarning lists every row without a chosen bank account.
type InvalidRowsWarning struct {
	Rows []InvalidRow
}

func (e *InvalidRowsWarning) Error() string {
	return fmt.Sprintf("%d row(s) with empty or unselected %s", len(e.Rows), types.ColumnBankAccount)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the outcome of Validate. At most one of the two fields is set.
type Result struct {
	Missing *MissingColumnsError
	Invalid *InvalidRowsWarning

	// RowsChecked is the number of rows inspected in step 2.
	RowsChecked int
}

// IsValid reports whether the dataset may be converted.
func (r *Result) IsValid() bool {
	return r.Missing == nil && r.Invalid == nil
}

// Err returns the failure as an error, or nil when valid.
func (r *Result) Err() error {
	switch {
	case r.Missing != nil:
		return r.Missing
	case r.Invalid != nil:
		return r.Invalid
	default:
		return nil
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validate checks ds against the requirements of category.
//
// PARAMETERS:
//   - ds: The dataset produced by a reader.
//   - category: The transaction category being generated.
//
// RETURNS:
//   - A Result; use IsValid or Err to inspect it.
func Validate(ds types.Dataset, category types.Category) *Result {
	var missing []string
	for _, column := range category.RequiredColumns() {
		if !ds.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &Result{Missing: &MissingColumnsError{Category: category, Columns: missing}}
	}

	result := &Result{RowsChecked: len(ds.Rows)}
	var invalid []InvalidRow
	for _, row := range ds.Rows {
		value := strings.TrimSpace(row.Get(types.ColumnBankAccount).DisplayString())
		if value != "" && value != UnselectedBankAccount {
			continue
		}
		invalid = append(invalid, InvalidRow{
			Index:         row.Index,
			SheetRow:      row.SheetRow,
			InvoiceNumber: row.Get(types.ColumnInvoiceNumber).DisplayString(),
			Value:         value,
		})
	}
	if len(invalid) > 0 {
		result.Invalid = &InvalidRowsWarning{Rows: invalid}
	}
	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FormatErrors renders a result for display or logging.
func FormatErrors(result *Result) string {
	if result == nil || result.IsValid() {
		return "No validation errors."
	}

	var builder strings.Builder
	if result.Missing != nil {
		builder.WriteString(fmt.Sprintf("Validation failed: %d required column(s) missing for %s:\n\n",
			len(result.Missing.Columns), result.Missing.Category))
		for i, column := range result.Missing.Columns {
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, column))
		}
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("Validation failed: %d row(s) with %s empty or not selected:\n\n",
		len(result.Invalid.Rows), types.ColumnBankAccount))
	for i, row := range result.Invalid.Rows {
		builder.WriteString(fmt.Sprintf("%d. Row %d (sheet row %d), %s '%s': %s is '%s'\n",
			i+1, row.Index, row.SheetRow, types.ColumnInvoiceNumber, row.InvoiceNumber,
			types.ColumnBankAccount, row.Value))
	}
	builder.WriteString("\nFix the data before generating XML.\n")
	return builder.String()
}
