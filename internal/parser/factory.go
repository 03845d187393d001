package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/portfolio-parser/internal/logging"
)

// FileType defines the input formats a parser exists for.
type FileType string

const (
	CSV         FileType = "csv"
	XLSX        FileType = "xlsx"
	XLS         FileType = "xls"
	Unsupported FileType = ""
)

// SupportedExtensions is the human-readable list used in error messages.
const SupportedExtensions = ".csv, .xlsx or .xls"

// DetectFileType maps a file name to its format by extension, ignoring case.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".xlsx", ".xlsm":
		return XLSX
	case ".xls":
		return XLS
	default:
		return Unsupported
	}
}

// GetParser returns a new instance of the appropriate parser for the given type.
func GetParser(fileType FileType, logger logging.Logger) (TableParser, error) {
	switch fileType {
	case CSV:
		return NewCSVParser(logger), nil
	case XLSX:
		return NewExcelParser(logger), nil
	case XLS:
		return NewXLSParser(logger), nil
	default:
		return nil, fmt.Errorf("unknown file type: %q", fileType)
	}
}
