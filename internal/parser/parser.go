package parser

import (
	"context"

	"fjacquet/portfolio-parser/internal/models"
)

// TableParser reads one spreadsheet-like file into a Table.
//
// The first non-blank record is the header. Implementations never return a
// Table whose rows reference labels outside Columns.
type TableParser interface {
	Parse(ctx context.Context, path string) (*models.Table, error)
}
