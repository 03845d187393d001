package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"

	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first sheet of an XLSX workbook. Cells styled with
// a date number format are returned as time.Time; all other cells keep
// their raw text.
type ExcelParser struct {
	BaseParser
}

// NewExcelParser creates an ExcelParser.
func NewExcelParser(logger logging.Logger) *ExcelParser {
	return &ExcelParser{BaseParser: NewBaseParser(logger)}
}

// Parse reads path.
func (p *ExcelParser) Parse(ctx context.Context, path string) (*models.Table, error) {
	name := filepath.Base(path)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("Excel file appears to be corrupted: %s - %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.WithError(cerr).Warn("Failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &parsererror.DataExtractionError{FilePath: name, Reason: "workbook has no sheets"}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &parsererror.ParseError{Parser: "XLSX", Field: "sheet", Value: sheet, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dates := &dateStyles{file: f, cache: map[int]bool{}}
	records := make([][]any, len(rows))
	for r, row := range rows {
		rec := make([]any, len(row))
		for c, raw := range row {
			rec[c] = raw
			if raw == "" {
				continue
			}
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil || !dates.isDate(sheet, c+1, r+1) {
				continue
			}
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				rec[c] = t
			}
		}
		records[r] = rec
	}

	table := BuildTable(name, records)
	p.logger.Debug("Loaded Excel file",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: "sheet", Value: sheet},
		logging.Field{Key: logging.FieldCount, Value: len(table.Rows)})
	return table, nil
}

// dateStyles answers whether a cell's number format renders a date,
// caching the answer per style id.
type dateStyles struct {
	file  *excelize.File
	cache map[int]bool
}

func (d *dateStyles) isDate(sheet string, col, row int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	styleID, err := d.file.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if v, ok := d.cache[styleID]; ok {
		return v
	}

	isDate := false
	if style, err := d.file.GetStyle(styleID); err == nil && style != nil {
		isDate = IsDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	d.cache[styleID] = isDate
	return isDate
}

// IsDateNumFmt reports whether a built-in number format id or a custom
// format code displays a date.
func IsDateNumFmt(numFmt int, custom *string) bool {
	if (numFmt >= 14 && numFmt <= 22) || (numFmt >= 27 && numFmt <= 36) || (numFmt >= 50 && numFmt <= 58) {
		return true
	}
	if custom == nil {
		return false
	}
	code := strings.ToLower(*custom)
	// drop quoted literals and bracketed sections such as colors
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	code = b.String()
	return strings.Contains(code, "y") || strings.Contains(code, "d") ||
		(strings.Contains(code, "m") && !strings.Contains(code, "0"))
}
