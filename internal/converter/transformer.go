// =============================================================================
// Accurate XML Converter - Field Transformer
// =============================================================================
//
// This module applies configured per-column rewrites to a dataset before it
// is validated. Typical uses are normalizing account numbers exported with
// different formatting, or mapping legacy bank names to account codes.
//
// Rules are compiled once by NewTransformer so that an unknown action type
// or a bad pattern is reported before any row is touched.
//
// EXAMPLE (config.yaml):
//
//   transformations:
//     - column: NO AKUN
//       actions:
//         - type: trim
//         - type: pad_zeros_to_length
//           value: "6"
//     - column: AKUN BANK
//       actions:
//         - type: lookup
//           lookup_table:
//             BCA: "1101"
//             MANDIRI: "1102"
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

// Supported transformation action types.
const (
	ActionTrim             = "trim"
	ActionUppercase        = "uppercase"
	ActionLowercase        = "lowercase"
	ActionPrependString    = "prepend_string"
	ActionAppendString     = "append_string"
	ActionPadZerosToLength = "pad_zeros_to_length"
	ActionReplace          = "replace"
	ActionRegexReplace     = "regex_replace"
	ActionLookup           = "lookup"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer rewrites dataset cells according to configured rules.
type Transformer struct {
	rules map[string][]step
}

type step func(string) string

// NewTransformer compiles rules.
//
// PARAMETERS:
//   - rules: Column rules from the configuration; column names are
//     normalized the same way as sheet headers.
//
// RETURNS:
//   - A Transformer; with no rules it leaves every dataset unchanged.
//   - An error naming the first unknown action type or invalid argument.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: make(map[string][]step)}
	for _, rule := range rules {
		column := types.NormalizeColumn(rule.Column)
		for _, action := range rule.Actions {
			s, err := compileAction(action)
			if err != nil {
				return nil, fmt.Errorf("column %s: transformation %q: %w", column, action.Type, err)
			}
			t.rules[column] = append(t.rules[column], s)
		}
	}
	return t, nil
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool {
	return len(t.rules) == 0
}

// Apply returns a copy of ds with every rule applied. Missing cells are left
// untouched; a rewritten Number cell becomes Text.
func (t *Transformer) Apply(ds types.Dataset) types.Dataset {
	if t.Empty() {
		return ds
	}

	out := types.Dataset{
		Columns: ds.Columns,
		Rows:    make([]types.InputRow, len(ds.Rows)),
	}
	for i, row := range ds.Rows {
		cells := make(map[string]types.CellValue, len(row.Cells))
		for column, value := range row.Cells {
			steps, ok := t.rules[column]
			if !ok || value.IsMissing() {
				cells[column] = value
				continue
			}
			text := value.DisplayString()
			for _, s := range steps {
				text = s(text)
			}
			cells[column] = types.Text(text)
		}
		out.Rows[i] = types.InputRow{Index: row.Index, SheetRow: row.SheetRow, Cells: cells}
	}
	return out
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

func compileAction(action config.TransformationAction) (step, error) {
	switch action.Type {
	case ActionTrim:
		return strings.TrimSpace, nil

	case ActionUppercase:
		return strings.ToUpper, nil

	case ActionLowercase:
		return strings.ToLower, nil

	case ActionPrependString:
		prefix := action.Value
		return func(s string) string { return prefix + s }, nil

	case ActionAppendString:
		suffix := action.Value
		return func(s string) string { return s + suffix }, nil

	case ActionPadZerosToLength:
		// "123" with value "6" becomes "000123"; longer values are kept.
		length, err := strconv.Atoi(strings.TrimSpace(action.Value))
		if err != nil || length <= 0 {
			return nil, fmt.Errorf("invalid length %q", action.Value)
		}
		return func(s string) string { return PadLeft(s, length, '0') }, nil

	case ActionReplace:
		if action.Find == "" {
			return nil, fmt.Errorf("find is required")
		}
		find, replacement := action.Find, action.Value
		return func(s string) string { return strings.ReplaceAll(s, find, replacement) }, nil

	case ActionRegexReplace:
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		replacement := action.Value
		return func(s string) string { return re.ReplaceAllString(s, replacement) }, nil

	case ActionLookup:
		// Values without an entry pass through unchanged.
		table := make(map[string]string, len(action.LookupTable))
		for k, v := range action.LookupTable {
			table[k] = v
		}
		return func(s string) string {
			if v, ok := table[s]; ok {
				return v
			}
			return s
		}, nil

	default:
		return nil, fmt.Errorf("unknown transformation type")
	}
}

// PadLeft pads s on the left with padChar up to length runes.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
