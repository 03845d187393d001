// Package models provides the data structures used throughout the application.
package models

// CategoryConfig represents one keyword list in the rules YAML file
type CategoryConfig struct {
	Name     Category `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ColumnLayout maps each semantic field to the 0-based column position it is
// read from. Exporters rarely agree on header labels but tend to agree on
// column order, so records are read by position.
type ColumnLayout struct {
	Date            int   `yaml:"date"`
	CompanySymbol   int   `yaml:"company_symbol"`
	Quantity        int   `yaml:"quantity"`
	UnitPrice       int   `yaml:"unit_price"`
	Currency        int   `yaml:"currency"`
	TransactionFee  int   `yaml:"transaction_fee"`
	ProceedsForeign int   `yaml:"proceeds_foreign"`
	ProceedsILS     int   `yaml:"proceeds_ils"`
	AmountFallback  []int `yaml:"amount_fallback"`
}

// DefaultColumnLayout is the layout of the reference broker export.
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{
		Date:            0,
		CompanySymbol:   3,
		Quantity:        4,
		UnitPrice:       5,
		Currency:        6,
		TransactionFee:  7,
		ProceedsForeign: 9,
		ProceedsILS:     10,
		AmountFallback:  []int{9, 10, 5},
	}
}

// RulesConfig represents the structure of the rules YAML file
type RulesConfig struct {
	TypeColumns   []string         `yaml:"type_columns"`
	SymbolColumns []string         `yaml:"symbol_columns"`
	Categories    []CategoryConfig `yaml:"categories"`
	Layout        ColumnLayout     `yaml:"layout"`
}

// Keywords returns the keyword list configured for a category.
func (r *RulesConfig) Keywords(category Category) []string {
	for _, c := range r.Categories {
		if c.Name == category {
			return c.Keywords
		}
	}
	return nil
}
