// Package categorizer decides which kind of portfolio transaction a row
// describes, based on the text of its transaction-type column.
package categorizer

import (
	"strings"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
)

// Categorizer locates the type column of a table and classifies rows.
// It is read-only after construction and safe for concurrent use.
type Categorizer struct {
	typeColumns   []string
	symbolColumns []string
	strategies    []CategorizationStrategy
	logger        logging.Logger
}

// NewCategorizer creates a Categorizer from the loaded rules.
func NewCategorizer(rules *models.RulesConfig, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Categorizer{
		typeColumns:   append([]string(nil), rules.TypeColumns...),
		symbolColumns: append([]string(nil), rules.SymbolColumns...),
		strategies:    []CategorizationStrategy{NewKeywordStrategy(rules)},
		logger:        logger,
	}
}

// FindTypeColumn returns the label of the column holding the transaction
// type. Candidates are tried in order by exact match, then in order by
// case-insensitive match; the table's own spelling is returned.
func (c *Categorizer) FindTypeColumn(table *models.Table) (string, bool) {
	if table == nil {
		return "", false
	}
	for _, name := range c.typeColumns {
		if table.HasColumn(name) {
			return name, true
		}
	}
	for _, name := range c.typeColumns {
		for _, col := range table.Columns {
			if strings.EqualFold(col, name) {
				return col, true
			}
		}
	}
	return "", false
}

// Categorize classifies a row. found is false when the row has no value in
// typeColumn or the value matches no keyword; that is not an error.
func (c *Categorizer) Categorize(row models.Row, typeColumn string) (models.Category, bool) {
	value, ok := row[typeColumn]
	if !ok || typeColumn == "" {
		return "", false
	}
	text := strings.ToLower(models.CellText(value))

	for _, strategy := range c.strategies {
		if category, found := strategy.Match(text); found {
			c.logger.WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: strategy.Name()},
				logging.Field{Key: logging.FieldCategory, Value: category},
				logging.Field{Key: "type", Value: text},
			).Debug("Row categorized")
			return category, true
		}
	}
	return "", false
}

// DividendSymbol finds the company symbol of a dividend row: the value of the
// column directly right of typeColumn, else the first non-blank value among
// the configured symbol columns.
func (c *Categorizer) DividendSymbol(table *models.Table, row models.Row, typeColumn string) (string, bool) {
	if idx := table.IndexOf(typeColumn); idx >= 0 {
		if value, ok := table.Cell(row, idx+1); ok {
			return models.CellText(value), true
		}
	}
	for _, name := range c.symbolColumns {
		if value, ok := row[name]; ok && !models.IsBlank(value) {
			return models.CellText(value), true
		}
	}
	return "", false
}
