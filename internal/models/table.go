package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row maps a column label to the raw cell value read by a file parser.
// Values are string, float64, int, time.Time or nil for a blank cell.
type Row map[string]any

// Table is the in-memory grid produced by a file parser: ordered column
// labels plus ordered rows. A Table is never modified after it is produced.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnAt returns the label of the column at the 0-based position index.
func (t *Table) ColumnAt(index int) (string, bool) {
	if t == nil || index < 0 || index >= len(t.Columns) {
		return "", false
	}
	return t.Columns[index], true
}

// IndexOf returns the 0-based position of a column label, or -1.
func (t *Table) IndexOf(label string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the given label.
func (t *Table) HasColumn(label string) bool {
	return t.IndexOf(label) >= 0
}

// Cell reads the value at the 0-based column position of a row. It reports
// false when the position is outside the table or the cell is blank.
func (t *Table) Cell(row Row, index int) (any, bool) {
	label, ok := t.ColumnAt(index)
	if !ok {
		return nil, false
	}
	value, ok := row[label]
	if !ok || IsBlank(value) {
		return nil, false
	}
	return value, true
}

// CellString reads the cell at a position as trimmed text. Missing and blank
// cells yield "".
func (t *Table) CellString(row Row, index int) string {
	value, ok := t.Cell(row, index)
	if !ok {
		return ""
	}
	return CellText(value)
}

// IsBlank reports whether a raw cell value carries no data.
func IsBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}

// CellText renders a raw cell value as trimmed text.
func CellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
