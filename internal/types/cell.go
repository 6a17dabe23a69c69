package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind discriminates the variants of CellValue.
type CellKind int

const (
	// CellMissing is an empty or absent cell.
	CellMissing CellKind = iota

	// CellText is a string cell.
	CellText

	// CellNumber is a numeric cell.
	CellNumber
)

// CellValue is a spreadsheet cell: Missing, Text or Number.
// The zero value is Missing.
type CellValue struct {
	kind   CellKind
	text   string
	number decimal.Decimal
}

// Missing returns the missing cell.
func Missing() CellValue {
	return CellValue{}
}

// Text returns a text cell.
func Text(s string) CellValue {
	return CellValue{kind: CellText, text: s}
}

// Number returns a numeric cell.
func Number(d decimal.Decimal) CellValue {
	return CellValue{kind: CellNumber, number: d}
}

// Kind reports which variant v holds.
func (v CellValue) Kind() CellKind {
	return v.kind
}

// IsMissing reports whether v is the missing cell.
func (v CellValue) IsMissing() bool {
	return v.kind == CellMissing
}

// IsBlank reports whether v is missing or text that is empty after trimming.
func (v CellValue) IsBlank() bool {
	switch v.kind {
	case CellMissing:
		return true
	case CellText:
		return strings.TrimSpace(v.text) == ""
	default:
		return false
	}
}

// Decimal returns the numeric value of a Number cell.
func (v CellValue) Decimal() (decimal.Decimal, bool) {
	if v.kind != CellNumber {
		return decimal.Zero, false
	}
	return v.number, true
}

// DisplayString converts any cell to the text written into the XML.
// Missing is "", Text is passed through unchanged and Number uses the
// canonical decimal form ("5000", "2.5", never "5000.0" or an exponent).
func (v CellValue) DisplayString() string {
	switch v.kind {
	case CellText:
		return v.text
	case CellNumber:
		return v.number.String()
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v CellValue) String() string {
	return v.DisplayString()
}
