package converter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
)

func TestTransformerActions(t *testing.T) {
	tests := []struct {
		name   string
		action config.TransformationAction
		input  string
		want   string
	}{
		{"trim", config.TransformationAction{Type: ActionTrim}, "  a  ", "a"},
		{"uppercase", config.TransformationAction{Type: ActionUppercase}, "bca", "BCA"},
		{"lowercase", config.TransformationAction{Type: ActionLowercase}, "BCA", "bca"},
		{"prepend", config.TransformationAction{Type: ActionPrependString, Value: "11-"}, "01", "11-01"},
		{"append", config.TransformationAction{Type: ActionAppendString, Value: "-00"}, "5", "5-00"},
		{"pad", config.TransformationAction{Type: ActionPadZerosToLength, Value: "6"}, "123", "000123"},
		{"pad longer", config.TransformationAction{Type: ActionPadZerosToLength, Value: "2"}, "123", "123"},
		{"replace", config.TransformationAction{Type: ActionReplace, Find: ".", Value: ""}, "1.101.01", "110101"},
		{"regex", config.TransformationAction{Type: ActionRegexReplace, Find: `\s+`, Value: " "}, "a   b", "a b"},
		{"lookup hit", config.TransformationAction{Type: ActionLookup, LookupTable: map[string]string{"BCA": "1101"}}, "BCA", "1101"},
		{"lookup miss", config.TransformationAction{Type: ActionLookup, LookupTable: map[string]string{"BCA": "1101"}}, "BNI", "BNI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransformer([]config.TransformationRule{{Column: "memo", Actions: []config.TransformationAction{tt.action}}})
			require.NoError(t, err)

			ds := types.Dataset{
				Columns: []string{types.ColumnMemo},
				Rows:    []types.InputRow{{Index: 1, SheetRow: 3, Cells: map[string]types.CellValue{types.ColumnMemo: types.Text(tt.input)}}},
			}
			out := tr.Apply(ds)
			assert.Equal(t, tt.want, out.Rows[0].Get(types.ColumnMemo).DisplayString())
			assert.Equal(t, tt.input, ds.Rows[0].Get(types.ColumnMemo).DisplayString(), "input must not be modified")
		})
	}
}

func TestTransformerChainAndKinds(t *testing.T) {
	tr, err := NewTransformer([]config.TransformationRule{{
		Column: " No Akun ",
		Actions: []config.TransformationAction{
			{Type: ActionPadZerosToLength, Value: "6"},
			{Type: ActionPrependString, Value: "GL"},
		},
	}})
	require.NoError(t, err)
	assert.False(t, tr.Empty())

	ds := types.Dataset{
		Columns: []string{types.ColumnAccountNumber, types.ColumnMemo},
		Rows: []types.InputRow{
			{Index: 1, SheetRow: 3, Cells: map[string]types.CellValue{
				types.ColumnAccountNumber: types.Number(decimal.NewFromInt(1101)),
				types.ColumnMemo:          types.Text("untouched"),
			}},
			{Index: 2, SheetRow: 4, Cells: map[string]types.CellValue{
				types.ColumnAccountNumber: types.Missing(),
			}},
		},
	}

	out := tr.Apply(ds)
	first := out.Rows[0].Get(types.ColumnAccountNumber)
	assert.Equal(t, types.CellText, first.Kind())
	assert.Equal(t, "GL001101", first.DisplayString())
	assert.Equal(t, "untouched", out.Rows[0].Get(types.ColumnMemo).DisplayString())
	assert.True(t, out.Rows[1].Get(types.ColumnAccountNumber).IsMissing())
	assert.Equal(t, 4, out.Rows[1].SheetRow)
}

func TestTransformerEmpty(t *testing.T) {
	tr, err := NewTransformer(nil)
	require.NoError(t, err)
	assert.True(t, tr.Empty())

	ds := types.Dataset{Columns: []string{"A"}}
	assert.Equal(t, ds, tr.Apply(ds))
}

func TestTransformerInvalidRules(t *testing.T) {
	tests := []struct {
		name   string
		action config.TransformationAction
	}{
		{"unknown type", config.TransformationAction{Type: "title_case"}},
		{"bad regex", config.TransformationAction{Type: ActionRegexReplace, Find: "("}},
		{"bad length", config.TransformationAction{Type: ActionPadZerosToLength, Value: "six"}},
		{"replace without find", config.TransformationAction{Type: ActionReplace, Value: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransformer([]config.TransformationRule{{Column: "MEMO", Actions: []config.TransformationAction{tt.action}}})
			assert.Error(t, err)
		})
	}
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "0042", PadLeft("42", 4, '0'))
	assert.Equal(t, "42", PadLeft("42", 1, '0'))
}
