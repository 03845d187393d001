// Package parser loads CSV, XLSX and XLS exports into in-memory tables.
package parser

import (
	"fmt"
	"strconv"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
)

// BaseParser provides the logger and table assembly shared by the format
// parsers, which embed it.
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser instance with the provided logger.
// If logger is nil, a default logger will be used.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{logger: logger}
}

// BuildTable turns raw records into a Table. Leading and fully blank
// records are skipped; the first remaining record is the header. Rows
// shorter than the header are padded with blanks and blank cells become nil.
func BuildTable(name string, records [][]any) *models.Table {
	table := &models.Table{Name: name, Columns: []string{}, Rows: []models.Row{}}

	start := 0
	for start < len(records) && blankRecord(records[start]) {
		start++
	}
	if start == len(records) {
		return table
	}

	width := len(records[start])
	for _, rec := range records[start+1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}
	table.Columns = HeaderLabels(records[start], width)

	for _, rec := range records[start+1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(models.Row, width)
		for i, label := range table.Columns {
			var value any
			if i < len(rec) && !models.IsBlank(rec[i]) {
				value = rec[i]
			}
			row[label] = value
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// HeaderLabels derives unique column labels from a header record, widened to
// width. Blank labels become "Unnamed: <i>"; a repeated label gets a ".<n>"
// suffix, so two "Amount" columns become "Amount" and "Amount.1".
func HeaderLabels(header []any, width int) []string {
	labels := make([]string, width)
	seen := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		label := ""
		if i < len(header) {
			label = models.CellText(header[i])
		}
		if label == "" {
			label = "Unnamed: " + strconv.Itoa(i)
		}
		base := label
		for seen[label] {
			counts[base]++
			label = fmt.Sprintf("%s.%d", base, counts[base])
		}
		seen[label] = true
		labels[i] = label
	}
	return labels
}

func blankRecord(rec []any) bool {
	for _, v := range rec {
		if !models.IsBlank(v) {
			return false
		}
	}
	return true
}

func stringsToRecord(fields []string) []any {
	rec := make([]any, len(fields))
	for i, f := range fields {
		rec[i] = f
	}
	return rec
}
