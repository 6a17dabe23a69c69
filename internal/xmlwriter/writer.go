// =============================================================================
// Accurate XML Converter - XML Writer Module
// =============================================================================
//
// This module turns TransactionRecords into an Accurate NMEXML import file.
//
// XML STRUCTURE:
//
//   <?xml version='1.0' encoding='UTF-8'?>
//   <NMEXML EximID="12" BranchCode="..." ACCOUNTANTCOPYID="">
//     <TRANSACTIONS OnError="CONTINUE">
//       <OTHERPAYMENT operation="Add" REQUESTID="1">   <!-- or OTHERDEPOSIT -->
//         <TRANSACTIONID>1001</TRANSACTIONID>
//         <ACCOUNTLINE operation="Add">
//           <KeyID>1</KeyID>
//           <GLACCOUNT>...</GLACCOUNT>                  <!-- NO AKUN -->
//           <GLAMOUNT>...</GLAMOUNT>
//           <DESCRIPTION>...</DESCRIPTION>
//           <RATE>...</RATE>
//           <TXDATE/>
//           <POSTED/>
//           <CURRENCYNAME/>
//         </ACCOUNTLINE>
//         <JVNUMBER>...</JVNUMBER>
//         <TRANSDATE>...</TRANSDATE>
//         <SOURCE>GL</SOURCE>
//         <TRANSTYPE>other payment</TRANSTYPE>
//         <TRANSDESCRIPTION>...</TRANSDESCRIPTION>
//         <JVAMOUNT>...</JVAMOUNT>
//         <GLACCOUNT>...</GLACCOUNT>                    <!-- AKUN BANK -->
//         <RATE>1</RATE>
//       </OTHERPAYMENT>
//     </TRANSACTIONS>
//   </NMEXML>
//
// Element and attribute order is fixed; Accurate's importer depends on it.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

// Declaration is the XML declaration written before the root element.
const Declaration = "<?xml version='1.0' encoding='UTF-8'?>"

// Indent is the per-level indentation.
const Indent = "  "

// EximID identifies the NMEXML export/import format version.
const EximID = "12"

// =============================================================================
// DOCUMENT BUILDING
// =============================================================================

// Serialize builds and renders the document for records.
//
// PARAMETERS:
//   - branchCode: The BranchCode detected from the sample export.
//   - category: Selects OTHERPAYMENT or OTHERDEPOSIT blocks.
//   - records: The built transactions, rendered in order.
//
// RETURNS:
//   - The UTF-8 document bytes. The same input always renders identical bytes.
func Serialize(branchCode string, category types.Category, records []types.TransactionRecord) []byte {
	return Render(BuildDocument(branchCode, category, records))
}

// BuildDocument returns the NMEXML element tree.
func BuildDocument(branchCode string, category types.Category, records []types.TransactionRecord) Element {
	blocks := make([]Element, len(records))
	for i, record := range records {
		blocks[i] = buildTransactionElement(category, record)
	}

	transactions := NewElement("TRANSACTIONS", []xml.Attr{Attr("OnError", "CONTINUE")}, blocks...)

	return NewElement("NMEXML", []xml.Attr{
		Attr("EximID", EximID),
		Attr("BranchCode", branchCode),
		Attr("ACCOUNTANTCOPYID", ""),
	}, transactions)
}

// buildTransactionElement constructs one OTHERPAYMENT / OTHERDEPOSIT block.
func buildTransactionElement(category types.Category, record types.TransactionRecord) Element {
	accountLine := NewElement("ACCOUNTLINE", []xml.Attr{Attr("operation", "Add")},
		TextElement("KeyID", "1"),
		TextElement("GLACCOUNT", record.GLAccount),
		TextElement("GLAMOUNT", record.Amount),
		TextElement("DESCRIPTION", record.Description),
		TextElement("RATE", record.Rate),
		EmptyElement("TXDATE"),
		EmptyElement("POSTED"),
		EmptyElement("CURRENCYNAME"),
	)

	return NewElement(category.ElementName(), []xml.Attr{Attr("operation", "Add"), Attr("REQUESTID", "1")},
		TextElement("TRANSACTIONID", strconv.FormatInt(record.TransactionID, 10)),
		accountLine,
		TextElement("JVNUMBER", record.InvoiceNumber),
		TextElement("TRANSDATE", record.TransactionDate),
		TextElement("SOURCE", "GL"),
		TextElement("TRANSTYPE", category.TransType()),
		TextElement("TRANSDESCRIPTION", record.Memo),
		TextElement("JVAMOUNT", record.Amount),
		TextElement("GLACCOUNT", record.BankAccount),
		TextElement("RATE", "1"),
	)
}

// =============================================================================
// RENDERING
// =============================================================================

// Render writes the declaration and the pretty-printed tree.
//
// Layout rules:
//   - container elements put each child on its own line, indented by Indent
//   - elements with text, even empty text, render as <X>text</X>
//   - elements with neither render self-closed as <X/>
func Render(root Element) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(Declaration)
	buffer.WriteByte('\n')
	writeElement(&buffer, root, 0)
	return buffer.Bytes()
}

func writeElement(buffer *bytes.Buffer, element Element, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(Indent)
	}

	buffer.WriteByte('<')
	buffer.WriteString(element.name)
	for _, attr := range element.attrs {
		buffer.WriteByte(' ')
		buffer.WriteString(attr.Name.Local)
		buffer.WriteString(`="`)
		buffer.WriteString(escapeAttr(attr.Value))
		buffer.WriteByte('"')
	}

	switch {
	case len(element.children) > 0:
		buffer.WriteString(">\n")
		for _, child := range element.children {
			writeElement(buffer, child, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(Indent)
		}
	case element.hasText:
		buffer.WriteByte('>')
		buffer.WriteString(escapeText(element.text))
	default:
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString("</")
	buffer.WriteString(element.name)
	buffer.WriteString(">\n")
}

// escapeText escapes character data. Characters XML 1.0 cannot represent
// are dropped.
func escapeText(s string) string {
	var buffer bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '\r':
			buffer.WriteString("&#13;")
		default:
			if isXMLChar(r) {
				buffer.WriteRune(r)
			}
		}
	}
	return buffer.String()
}

// escapeAttr escapes a double-quoted attribute value.
func escapeAttr(s string) string {
	var buffer bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\n':
			buffer.WriteString("&#10;")
		case '\r':
			buffer.WriteString("&#13;")
		case '\t':
			buffer.WriteString("&#9;")
		default:
			if isXMLChar(r) {
				buffer.WriteRune(r)
			}
		}
	}
	return buffer.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
