// Package store loads the categorization rules: type-column candidates,
// keyword lists and the positional column layout.
package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// RulesStore resolves and loads the rules file.
type RulesStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewRulesStore creates a store for rulesFile. An empty rulesFile selects
// the built-in rules.
func NewRulesStore(rulesFile string, logger logging.Logger) *RulesStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &RulesStore{RulesFile: rulesFile, logger: logger}
}

// FindConfigFile looks for a rules file in standard locations
func (s *RulesStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "portfolio-parser", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules returns the configured rules. A configured file that cannot be
// found or parsed is an error; it never silently falls back to the defaults.
func (s *RulesStore) LoadRules() (*models.RulesConfig, error) {
	if s.RulesFile == "" {
		s.logger.Debug("Using built-in categorization rules")
		return DefaultRules()
	}

	path, err := s.FindConfigFile(s.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("rules file not found: %s: %w", s.RulesFile, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	s.logger.Info("Loaded categorization rules",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules.Categories)})
	return rules, nil
}

// DefaultRules returns the built-in rules.
func DefaultRules() (*models.RulesConfig, error) {
	return ParseRules(defaultRules)
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (*models.RulesConfig, error) {
	var rules models.RulesConfig
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("error parsing rules YAML: %w", err)
	}
	if err := Validate(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks that every category has keywords and that the layout
// positions are usable.
func Validate(rules *models.RulesConfig) error {
	if len(rules.TypeColumns) == 0 {
		return fmt.Errorf("type_columns must not be empty")
	}
	for _, category := range models.CategoryOrder {
		if len(rules.Keywords(category)) == 0 {
			return fmt.Errorf("category %s has no keywords", category)
		}
	}

	l := rules.Layout
	positions := map[string]int{
		"date":             l.Date,
		"company_symbol":   l.CompanySymbol,
		"quantity":         l.Quantity,
		"unit_price":       l.UnitPrice,
		"currency":         l.Currency,
		"transaction_fee":  l.TransactionFee,
		"proceeds_foreign": l.ProceedsForeign,
		"proceeds_ils":     l.ProceedsILS,
	}
	for name, pos := range positions {
		if pos < 0 {
			return fmt.Errorf("layout.%s must be >= 0, got %d", name, pos)
		}
	}
	if len(l.AmountFallback) == 0 {
		return fmt.Errorf("layout.amount_fallback must not be empty")
	}
	for _, pos := range l.AmountFallback {
		if pos < 0 {
			return fmt.Errorf("layout.amount_fallback contains negative position %d", pos)
		}
	}
	return nil
}
