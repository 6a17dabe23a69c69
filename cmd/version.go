// =============================================================================
// Accurate XML Converter - Version Command
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/accurate-xml-converter/internal/xmlwriter"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/accurate-xml-converter/cmd.Version=1.2.0'"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display the application version",
	Annotations: map[string]string{skipRuntime: ""},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Accurate XML Converter")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "NMEXML:     EximID %s\n", xmlwriter.EximID)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
