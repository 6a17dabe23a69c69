// =============================================================================
// Accurate XML Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (accurate-xml)
//   ├── branchCodeCmd (accurate-xml branch-code)
//   ├── validateCmd   (accurate-xml validate)
//   ├── convertCmd    (accurate-xml convert)
//   ├── serveCmd      (accurate-xml serve)
//   └── versionCmd    (accurate-xml version)
//
// The root command owns the global flags and, before any subcommand runs,
// loads the configuration and builds the logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and appLogger are set by loadRuntime before a subcommand runs.
var (
	appConfig *config.Config
	appLogger logging.Logger
)

// skipRuntime marks commands that run without configuration.
const skipRuntime = "skip-runtime"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "accurate-xml",
	Short: "Convert payment and receipt spreadsheets into Accurate NMEXML import files",
	Long: `accurate-xml turns an Excel (or CSV) sheet of payments or receipts into an
XML file that the Accurate accounting system can import.

The branch code is read from any XML previously exported by Accurate, the
starting transaction number from cell B1 of the sheet, and the column
headers from row 2.

Example Usage:
  accurate-xml branch-code --xml export.xml
  accurate-xml validate --input pembayaran.xlsx --type pembayaran
  accurate-xml convert --xml export.xml --input pembayaran.xlsx --type pembayaran
  accurate-xml serve --addr :8080`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, skip := cmd.Annotations[skipRuntime]; skip {
			return nil
		}
		return loadRuntime()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration named by --config and builds the logger.
func loadRuntime() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	appConfig = cfg
	appLogger = logging.NewLogrusAdapter(level, cfg.LogFormat)
	appLogger.Debug("Configuration loaded", logging.F(logging.FieldConfig, cfgFile))
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
