// =============================================================================
// Accurate XML Converter - Converter Module
// =============================================================================
//
// This module orchestrates one conversion, from a parsed workbook to the
// NMEXML bytes handed to the caller.
//
// CONVERSION PIPELINE:
//   1. Take the branch code from the session
//   2. Apply configured transformations
//   3. Validate the dataset for the chosen category
//   4. Build one TransactionRecord per row
//   5. Serialize the records
//
// Nothing is written to disk here; the CLI writes the bytes to a file and the
// HTTP server streams them as an attachment.
//
// =============================================================================

package converter

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/session"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/validation"
	"github.com/ginjaninja78/accurate-xml-converter/internal/xlsxparser"
	"github.com/ginjaninja78/accurate-xml-converter/internal/xmlwriter"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one conversion.
type Result struct {
	// FileName is the default download name for the category.
	FileName string

	// Content is the serialized document; nil when the run failed.
	Content []byte

	Category   types.Category
	BranchCode string

	// Validation is set once step 3 has run.
	Validation *validation.Result

	Stats ProcessingStats
}

// ProcessingStats describes one conversion.
type ProcessingStats struct {
	RowsRead            int
	TransactionsCreated int
	FirstTransactionID  int64
	LastTransactionID   int64
	ProcessingTime      time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the conversion pipeline.
type Converter struct {
	transformer *Transformer
	dateSource  DateSource
	fixedDate   string
	logger      logging.Logger
	now         func() time.Time
}

// Option customizes a Converter.
type Option func(*Converter)

// WithClock replaces time.Now, which supplies the fallback transaction date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithDateSource overrides the configured transaction date policy.
func WithDateSource(source DateSource, fixedDate string) Option {
	return func(c *Converter) {
		c.dateSource = source
		if fixedDate != "" {
			c.fixedDate = fixedDate
		}
	}
}

// New creates a Converter from the configuration.
//
// PARAMETERS:
//   - cfg: Application configuration; transformations and the transaction
//     date policy are taken from it.
//   - logger: Destination of progress logs; nil discards them.
//   - opts: Optional overrides.
//
// RETURNS:
//   - The Converter, or an error when a transformation rule is invalid.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (*Converter, error) {
	transformer, err := NewTransformer(cfg.Transformations)
	if err != nil {
		return nil, fmt.Errorf("invalid transformations: %w", err)
	}

	dateSource, ok := ParseDateSource(cfg.TransactionDate.Source)
	if !ok {
		return nil, fmt.Errorf("invalid transaction date source %q", cfg.TransactionDate.Source)
	}

	if logger == nil {
		logger = logging.Discard()
	}

	c := &Converter{
		transformer: transformer,
		dateSource:  dateSource,
		fixedDate:   cfg.TransactionDate.Fixed,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run converts a parsed workbook for the session's branch.
//
// PARAMETERS:
//   - sess: Holds the detected branch code.
//   - wb: The parsed workbook.
//   - category: Payment or deposit.
//
// RETURNS:
//   - The Result. On validation failure it is returned together with the
//     *validation.MissingColumnsError or *validation.InvalidRowsWarning.
//   - session.ErrBranchCodeMissing when no branch code was detected.
func (c *Converter) Run(sess *session.Session, wb *xlsxparser.Workbook, category types.Category) (*Result, error) {
	startTime := time.Now()
	today := c.now().Format(DateLayout)
	result := &Result{
		FileName: category.FileName(),
		Category: category,
	}
	result.Stats.RowsRead = len(wb.Dataset.Rows)

	log := c.logger.WithFields(
		logging.F(logging.FieldCategory, category.String()),
		logging.F(logging.FieldRows, len(wb.Dataset.Rows)),
	)

	// =========================================================================
	// STEP 1: BRANCH CODE
	// =========================================================================

	if !category.Valid() {
		return result, fmt.Errorf("unsupported transaction category %v", category)
	}

	branchCode, ok := sess.BranchCode()
	if !ok {
		log.Warn("Conversion requested before branch code detection")
		return result, session.ErrBranchCodeMissing
	}
	result.BranchCode = branchCode
	log = log.WithField(logging.FieldBranchCode, branchCode)
	log.Info("Starting conversion", logging.F(logging.FieldStartingID, wb.StartingTransactionID))

	// =========================================================================
	// STEP 2: APPLY TRANSFORMATIONS
	// =========================================================================

	dataset := c.transformer.Apply(wb.Dataset)
	if !c.transformer.Empty() {
		log.Debug("Applied transformation rules")
	}

	// =========================================================================
	// STEP 3: VALIDATE DATA
	// =========================================================================

	result.Validation = validation.Validate(dataset, category)
	if err := result.Validation.Err(); err != nil {
		log.WithError(err).Warn("Validation failed")
		result.Stats.ProcessingTime = time.Since(startTime)
		return result, err
	}
	log.Debug("Validation passed")

	// =========================================================================
	// STEP 4: BUILD TRANSACTIONS
	// =========================================================================

	fixedDate := c.fixedDate
	if fixedDate == "" {
		fixedDate = today
	}
	records := BuildWithOptions(dataset.Rows, category, wb.StartingTransactionID, BuildOptions{
		DateSource: c.dateSource,
		FixedDate:  fixedDate,
		Date1904:   wb.Date1904,
	})

	result.Stats.TransactionsCreated = len(records)
	if len(records) > 0 {
		result.Stats.FirstTransactionID = records[0].TransactionID
		result.Stats.LastTransactionID = records[len(records)-1].TransactionID
	}
	log.Debug("Built transactions",
		logging.F(logging.FieldTransactions, len(records)),
		logging.F(logging.FieldDateSource, c.dateSource.String()),
	)

	// =========================================================================
	// STEP 5: SERIALIZE
	// =========================================================================

	result.Content = xmlwriter.Serialize(branchCode, category, records)
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info("Conversion complete",
		logging.F(logging.FieldTransactions, result.Stats.TransactionsCreated),
		logging.F(logging.FieldFirstID, result.Stats.FirstTransactionID),
		logging.F(logging.FieldLastID, result.Stats.LastTransactionID),
		logging.F(logging.FieldDuration, result.Stats.ProcessingTime.Milliseconds()),
	)
	return result, nil
}

// Validate applies the configured transformations and validates the result
// without building anything. The CLI uses it for dry checks.
func (c *Converter) Validate(wb *xlsxparser.Workbook, category types.Category) *validation.Result {
	return validation.Validate(c.transformer.Apply(wb.Dataset), category)
}
