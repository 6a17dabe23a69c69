// =============================================================================
// Accurate XML Converter - File Manager Utility
// =============================================================================
//
// This module handles everything the CLI writes to disk:
//   - The output directory
//   - Output file naming
//   - Writing generated XML
//   - Validation error logs
//
// The HTTP server never touches the file system; it streams the generated
// bytes back to the caller instead.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/validation"
)

// DefaultOutputNameFormat keeps the category's fixed download name.
const DefaultOutputNameFormat = "{name}.xml"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager writes generated files below one output directory.
type FileManager struct {
	// OutputDir receives XML files and error logs.
	OutputDir string

	// Overwrite allows replacing an existing output file.
	Overwrite bool
}

// NewFileManager creates a FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		Overwrite: true,
	}
}

// ensureDir creates dir if it doesn't exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteOutput writes content to name inside the output directory.
//
// PARAMETERS:
//   - name: A file name; directory components are stripped.
//   - content: The serialized document.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the directory cannot be created, the file exists and
//     Overwrite is false, or the write fails.
func (fm *FileManager) WriteOutput(name string, content []byte) (string, error) {
	if err := ensureDir(fm.OutputDir); err != nil {
		return "", err
	}

	path := filepath.Join(fm.OutputDir, filepath.Base(name))
	if !fm.Overwrite && FileExists(path) {
		return "", fmt.Errorf("output file %s already exists", path)
	}

	// Write to a temporary file first so a failed write never leaves a
	// truncated import file behind.
	tmp, err := os.CreateTemp(fm.OutputDir, ".tmp-*.xml")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move output file into place: %w", err)
	}

	return path, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands an output name format.
//
// PARAMETERS:
//   - format: The name template. Placeholders:
//     {name}      - Category file stem (pembayaran_accurate, penerimaan_accurate)
//     {category}  - Category label, lower case (pembayaran, penerimaan)
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     An empty format means DefaultOutputNameFormat.
//   - params: Additional placeholder values; keys are given without braces.
//
// RETURNS:
//   - The file name, always ending in .xml.
//
// EXAMPLE:
//
//	format: "{branch}_{name}_{date}.xml"
//	params: {"branch": "JKT"}
//	output: "JKT_pembayaran_accurate_20251015.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	if strings.TrimSpace(format) == "" {
		format = DefaultOutputNameFormat
	}
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}
	return result
}

// CategoryParams returns the {name} and {category} values for category.
func CategoryParams(category types.Category) map[string]string {
	return map[string]string{
		"name":     category.FileStem(),
		"category": strings.ToLower(category.String()),
	}
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one problem reported in an error log.
type ErrorLogEntry struct {
	Timestamp     time.Time
	FileName      string
	ErrorType     string
	ErrorMessage  string
	SheetRow      int
	InvoiceNumber string
	FieldName     string
	FieldValue    string
}

// Error types written to the log.
const (
	ErrorTypeMissingColumn = "MissingColumn"
	ErrorTypeInvalidRow    = "InvalidRow"
)

// ErrorEntries converts a failed validation into log entries, one per
// missing column or rejected row.
func ErrorEntries(fileName string, result *validation.Result) []ErrorLogEntry {
	if result == nil || result.IsValid() {
		return nil
	}
	now := time.Now()
	var entries []ErrorLogEntry

	if result.Missing != nil {
		for _, column := range result.Missing.Columns {
			entries = append(entries, ErrorLogEntry{
				Timestamp:    now,
				FileName:     fileName,
				ErrorType:    ErrorTypeMissingColumn,
				ErrorMessage: fmt.Sprintf("required column is missing for %s", result.Missing.Category),
				FieldName:    column,
			})
		}
	}

	if result.Invalid != nil {
		for _, row := range result.Invalid.Rows {
			value := row.Value
			if value == "" {
				value = "(empty)"
			}
			entries = append(entries, ErrorLogEntry{
				Timestamp:     now,
				FileName:      fileName,
				ErrorType:     ErrorTypeInvalidRow,
				ErrorMessage:  "bank account not selected",
				SheetRow:      row.SheetRow,
				InvoiceNumber: row.InvoiceNumber,
				FieldName:     types.ColumnBankAccount,
				FieldValue:    value,
			})
		}
	}
	return entries
}

// WriteErrorLog writes entries to a timestamped text file.
//
// PARAMETERS:
//   - entries: The problems to report.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the log file, or "" when there is nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := ensureDir(outputDir); err != nil {
		return "", err
	}

	generated := time.Now()
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", generated.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(writer, "Accurate XML Converter - Error Log\nGenerated: %s\nTotal Errors: %d\n%s\n\n",
		generated.Format("2006-01-02 15:04:05"), len(entries), rule)

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n", i+1)
		fmt.Fprintf(writer, "  Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(writer, "  File:       %s\n", entry.FileName)
		fmt.Fprintf(writer, "  Error Type: %s\n", entry.ErrorType)
		fmt.Fprintf(writer, "  Message:    %s\n", entry.ErrorMessage)
		if entry.SheetRow > 0 {
			fmt.Fprintf(writer, "  Sheet Row:  %d\n", entry.SheetRow)
		}
		if entry.InvoiceNumber != "" {
			fmt.Fprintf(writer, "  Invoice:    %s\n", entry.InvoiceNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Column:     %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	fmt.Fprintf(writer, "%s\nEnd of Error Log\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
