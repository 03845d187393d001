package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"

	"github.com/extrame/xls"
)

// XLSParser reads the first sheet of a legacy BIFF (.xls) workbook.
type XLSParser struct {
	BaseParser
}

// NewXLSParser creates an XLSParser.
func NewXLSParser(logger logging.Logger) *XLSParser {
	return &XLSParser{BaseParser: NewBaseParser(logger)}
}

// Parse reads path.
func (p *XLSParser) Parse(ctx context.Context, path string) (*models.Table, error) {
	name := filepath.Base(path)
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("Excel file appears to be corrupted: %s - %w", name, err)
	}
	if book.NumSheets() == 0 {
		return nil, &parsererror.DataExtractionError{FilePath: name, Reason: "workbook has no sheets"}
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, &parsererror.DataExtractionError{FilePath: name, Reason: "workbook has no sheets"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([][]any, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		rec := make([]any, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			rec = append(rec, xlsCell(row.Col(c)))
		}
		records = append(records, rec)
	}

	table := BuildTable(name, records)
	p.logger.Debug("Loaded XLS file",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: "sheet", Value: sheet.Name},
		logging.Field{Key: logging.FieldCount, Value: len(table.Rows)})
	return table, nil
}

// xlsCell turns the library's rendering of date cells back into a time.
func xlsCell(text string) any {
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t
	}
	return text
}
