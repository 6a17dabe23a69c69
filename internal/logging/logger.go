// =============================================================================
// Accurate XML Converter - Logging
// =============================================================================
//
// Package logging decouples the converter, the HTTP server and the CLI from
// the concrete logging library. Production code logs through Logger, backed
// by logrus; tests use MockLogger and inspect what was recorded.
//
// =============================================================================

package logging

// Logger is the structured logging seam used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger that attaches err to every entry.
	WithError(err error) Logger

	// WithField returns a logger that attaches key=value to every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger that attaches all fields to every entry.
	WithFields(fields ...Field) Logger
}

// Field is one key/value pair of log context.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Standard field names, so log output can be filtered consistently.
const (
	FieldSession      = "session_id"
	FieldBranchCode   = "branch_code"
	FieldCategory     = "category"
	FieldInputFile    = "input_file"
	FieldOutputFile   = "output_file"
	FieldSheet        = "sheet"
	FieldRows         = "rows"
	FieldConfig       = "config"
	FieldStartingID   = "starting_id"
	FieldFirstID      = "first_transaction_id"
	FieldLastID       = "last_transaction_id"
	FieldDuration     = "duration_ms"
	FieldColumns      = "columns"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
	FieldAddr         = "addr"
	FieldDateSource   = "date_source"
	FieldTransactions = "transactions"
)
