// =============================================================================
// Accurate XML Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   accurate-xml branch-code  - Print the BranchCode of an Accurate export
//   accurate-xml validate     - Check a sheet without converting it
//   accurate-xml convert      - Generate the NMEXML import file
//   accurate-xml serve        - Run the HTTP API
//   accurate-xml version      - Display the application version
//
// LAYOUT:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Readers, validation, transaction building, XML writing,
//                  sessions and the HTTP server
//   - pkg/utils  : Output file handling
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/accurate-xml-converter/cmd"
)

func main() {
	cmd.Execute()
}
