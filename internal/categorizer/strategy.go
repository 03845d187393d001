package categorizer

import "fjacquet/portfolio-parser/internal/models"

// CategorizationStrategy maps the normalized text of a type cell to a category.
type CategorizationStrategy interface {
	// Match returns the category for text, which is already trimmed and
	// lower-cased. found is false when the strategy has no opinion.
	Match(text string) (category models.Category, found bool)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
