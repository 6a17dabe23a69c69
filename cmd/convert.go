// =============================================================================
// Accurate XML Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main command of the CLI.
//
// COMMAND USAGE:
//   accurate-xml convert --input FILE --type T (--xml FILE | --branch-code CODE) [flags]
//
// FLAGS:
//   --xml          : XML exported by Accurate; its BranchCode is used
//   --branch-code  : Use this branch code instead of reading one from --xml
//   --input        : Excel (.xlsx) or .csv file to convert
//   --type         : pembayaran or penerimaan
//   --output-dir   : Overrides output_dir from the configuration
//   --dry-run      : Convert and report without writing the file
//   --date-source  : column or fixed, overrides the configuration
//   --date         : YYYY-MM-DD used for fixed mode and as the fallback
//
// PROCESSING PIPELINE:
//   1. Determine the branch code
//   2. Read the sheet
//   3. Transform, validate, build and serialize (converter.Run)
//   4. Write the XML to the output directory
//
// On validation failure the report is printed, an error log is written to
// the output directory and the command exits non-zero.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/converter"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/session"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/validation"
	"github.com/ginjaninja78/accurate-xml-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type convertOptions struct {
	xmlPath    string
	branchCode string
	input      string
	category   string
	outputDir  string
	dryRun     bool
	dateSource string
	date       string
}

var convertOpts convertOptions

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a payment or receipt sheet into an Accurate XML import file",
	Long: `The convert command reads a sheet of payments (pembayaran) or receipts
(penerimaan) and writes pembayaran_accurate.xml or penerimaan_accurate.xml.

The branch code comes from an XML previously exported by Accurate (--xml) or
is given directly (--branch-code). Transaction numbers start at the value in
cell B1 and increase by one per row.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.OutOrStdout(), convertOpts, appConfig, appLogger)
	},
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runConvert(out io.Writer, opts convertOptions, cfg *config.Config, logger logging.Logger) error {
	category, err := types.ParseCategory(opts.category)
	if err != nil {
		return err
	}

	cfg, err = withDateFlags(cfg, opts)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	// =========================================================================
	// STEP 1: BRANCH CODE
	// =========================================================================

	sess := session.New()
	switch {
	case opts.branchCode != "":
		if err := sess.SetBranchCode(strings.TrimSpace(opts.branchCode)); err != nil {
			return err
		}
	case opts.xmlPath != "":
		code, err := detectBranchCode(opts.xmlPath)
		if err != nil {
			return err
		}
		if err := sess.SetBranchCode(code); err != nil {
			return err
		}
	default:
		return errors.New("either --xml or --branch-code is required")
	}

	// =========================================================================
	// STEP 2: READ THE SHEET
	// =========================================================================

	wb, err := converter.ReadWorkbookFile(opts.input, cfg)
	if err != nil {
		return err
	}
	logger.Debug("Sheet read",
		logging.F(logging.FieldInputFile, opts.input),
		logging.F(logging.FieldSheet, wb.SheetName),
		logging.F(logging.FieldColumns, wb.Dataset.Columns),
	)

	// =========================================================================
	// STEP 3: CONVERT
	// =========================================================================

	conv, err := converter.New(cfg, logger)
	if err != nil {
		return err
	}

	result, err := conv.Run(sess, wb, category)
	if err != nil {
		if result != nil && result.Validation != nil && !result.Validation.IsValid() {
			fmt.Fprintln(out, validation.FormatErrors(result.Validation))
			if !opts.dryRun {
				if path, logErr := utils.WriteErrorLog(utils.ErrorEntries(opts.input, result.Validation), cfg.OutputDir); logErr == nil {
					fmt.Fprintf(out, "Error log: %s\n", path)
				} else {
					logger.WithError(logErr).Warn("Could not write error log")
				}
			}
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return err
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	printSummary(out, opts.input, result)

	if opts.dryRun {
		fmt.Fprintln(out, "Dry run: no file written")
		return nil
	}

	params := utils.CategoryParams(category)
	params["branch"] = result.BranchCode
	name := utils.GenerateOutputFileName(cfg.OutputNameFormat, params)

	path, err := utils.NewFileManager(cfg.OutputDir).WriteOutput(name, result.Content)
	if err != nil {
		return err
	}
	logger.Info("Output written", logging.F(logging.FieldOutputFile, path))
	fmt.Fprintf(out, "Output:       %s\n", path)
	return nil
}

// withDateFlags returns a copy of cfg with --date-source and --date applied
// and validated.
func withDateFlags(cfg *config.Config, opts convertOptions) (*config.Config, error) {
	c := *cfg
	if opts.dateSource != "" {
		c.TransactionDate.Source = strings.ToLower(opts.dateSource)
	}
	if opts.date != "" {
		c.TransactionDate.Fixed = opts.date
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func printSummary(out io.Writer, input string, result *converter.Result) {
	fmt.Fprintf(out, "Input:        %s\n", input)
	fmt.Fprintf(out, "Category:     %s\n", result.Category)
	fmt.Fprintf(out, "Branch code:  %s\n", result.BranchCode)
	fmt.Fprintf(out, "Rows:         %d\n", result.Stats.RowsRead)
	fmt.Fprintf(out, "Transactions: %d", result.Stats.TransactionsCreated)
	if result.Stats.TransactionsCreated > 0 {
		fmt.Fprintf(out, " (%d-%d)", result.Stats.FirstTransactionID, result.Stats.LastTransactionID)
	}
	fmt.Fprintln(out)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringVar(&convertOpts.xmlPath, "xml", "", "XML exported by Accurate, used for the branch code")
	flags.StringVar(&convertOpts.branchCode, "branch-code", "", "Branch code to use instead of --xml")
	flags.StringVarP(&convertOpts.input, "input", "i", "", "Excel or CSV file to convert")
	flags.StringVarP(&convertOpts.category, "type", "t", "", "Transaction type: pembayaran or penerimaan")
	flags.StringVarP(&convertOpts.outputDir, "output-dir", "o", "", "Output directory (default from configuration)")
	flags.BoolVar(&convertOpts.dryRun, "dry-run", false, "Convert without writing the output file")
	flags.StringVar(&convertOpts.dateSource, "date-source", "", "Transaction date source: column or fixed")
	flags.StringVar(&convertOpts.date, "date", "", "Transaction date (YYYY-MM-DD) for fixed mode and rows without a date")

	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("type")
	convertCmd.MarkFlagsMutuallyExclusive("xml", "branch-code")
}
