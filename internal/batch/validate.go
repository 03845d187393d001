package batch

import (
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"
)

// validateTable rejects tables that cannot yield any record.
func validateTable(table *models.Table, filename string) error {
	switch {
	case table == nil:
		return &parsererror.ValidationError{FilePath: filename, Reason: "Table is missing"}
	case len(table.Rows) == 0:
		return &parsererror.ValidationError{FilePath: filename, Reason: "File is empty (no rows)"}
	case len(table.Columns) == 0:
		return &parsererror.ValidationError{FilePath: filename, Reason: "File has no columns"}
	}
	return nil
}
