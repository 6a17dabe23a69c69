// =============================================================================
// Accurate XML Converter - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   accurate-xml validate --input FILE --type pembayaran|penerimaan [--error-log]
//
// Reads the sheet, applies the configured transformations and prints the
// validation report. Nothing is generated. With --error-log the problems
// are also written to an error log in the output directory.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/converter"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/validation"
	"github.com/ginjaninja78/accurate-xml-converter/pkg/utils"
)

// ErrValidationFailed is returned when the sheet cannot be converted as is.
var ErrValidationFailed = errors.New("validation failed")

type validateOptions struct {
	input    string
	category string
	errorLog bool
}

var validateOpts validateOptions

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a sheet for missing columns and unselected bank accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), validateOpts, appConfig, appLogger)
	},
}

func runValidate(out io.Writer, opts validateOptions, cfg *config.Config, logger logging.Logger) error {
	category, err := types.ParseCategory(opts.category)
	if err != nil {
		return err
	}

	wb, err := converter.ReadWorkbookFile(opts.input, cfg)
	if err != nil {
		return err
	}

	conv, err := converter.New(cfg, logger)
	if err != nil {
		return err
	}

	result := conv.Validate(wb, category)
	fmt.Fprintf(out, "File:     %s\n", opts.input)
	fmt.Fprintf(out, "Category: %s\n", category)
	fmt.Fprintf(out, "Rows:     %d\n", len(wb.Dataset.Rows))
	fmt.Fprintln(out, validation.FormatErrors(result))

	if result.IsValid() {
		return nil
	}

	if opts.errorLog {
		path, err := utils.WriteErrorLog(utils.ErrorEntries(opts.input, result), cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("Error log written", logging.F(logging.FieldOutputFile, path))
		fmt.Fprintf(out, "Error log: %s\n", path)
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, result.Err())
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateOpts.input, "input", "i", "", "Excel or CSV file to check")
	validateCmd.Flags().StringVarP(&validateOpts.category, "type", "t", "", "Transaction type: pembayaran or penerimaan")
	validateCmd.Flags().BoolVar(&validateOpts.errorLog, "error-log", false, "Write problems to an error log in the output directory")
	validateCmd.MarkFlagRequired("input")
	validateCmd.MarkFlagRequired("type")
}
