package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/csvparser"
	"github.com/ginjaninja78/accurate-xml-converter/internal/xlsxparser"
)

// ReadWorkbook parses an uploaded or local input. Names ending in .csv
// (any case) go through the CSV reader, everything else is read as XLSX.
func ReadWorkbook(r io.Reader, name string, cfg *config.Config) (*xlsxparser.Workbook, error) {
	layout := xlsxparser.ReadOptions{
		SheetName:      cfg.Spreadsheet.SheetName,
		StartingIDCell: cfg.Spreadsheet.StartingIDCell,
		HeaderRow:      cfg.Spreadsheet.HeaderRow,
	}

	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return csvparser.Parse(r, csvparser.Settings{
			Delimiter: cfg.CSV.DelimiterRune(),
			Layout:    layout,
		})
	}
	return xlsxparser.Read(r, layout)
}

// ReadWorkbookFile is ReadWorkbook for a file on disk.
func ReadWorkbookFile(path string, cfg *config.Config) (*xlsxparser.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return ReadWorkbook(f, path, cfg)
}
