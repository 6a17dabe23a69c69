package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/branchcode"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/session"
)

var branchCodeXML string

var branchCodeCmd = &cobra.Command{
	Use:   "branch-code",
	Short: "Print the BranchCode of an XML exported by Accurate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBranchCode(cmd.OutOrStdout(), branchCodeXML, appLogger)
	},
}

func runBranchCode(out io.Writer, xmlPath string, logger logging.Logger) error {
	code, err := detectBranchCode(xmlPath)
	if err != nil {
		return err
	}
	logger.Debug("Branch code detected",
		logging.F(logging.FieldInputFile, xmlPath),
		logging.F(logging.FieldBranchCode, code),
	)
	fmt.Fprintln(out, code)
	return nil
}

// detectBranchCode reads the code from a sample file; an absent or empty
// attribute is session.ErrBranchCodeMissing.
func detectBranchCode(xmlPath string) (string, error) {
	code, err := branchcode.ExtractFile(xmlPath)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", fmt.Errorf("%s: %w", xmlPath, session.ErrBranchCodeMissing)
	}
	return code, nil
}

func init() {
	rootCmd.AddCommand(branchCodeCmd)

	branchCodeCmd.Flags().StringVar(&branchCodeXML, "xml", "", "XML file exported by Accurate")
	branchCodeCmd.MarkFlagRequired("xml")
}
