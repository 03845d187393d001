package categorizer

import (
	"strings"

	"fjacquet/portfolio-parser/internal/models"
)

// KeywordStrategy implements categorization by substring containment against
// ordered keyword lists. Lists are checked in models.CategoryOrder, so text
// matching several lists ("tax fee") resolves to the higher-priority one.
type KeywordStrategy struct {
	lists []keywordList
}

type keywordList struct {
	category models.Category
	keywords []string
}

// NewKeywordStrategy compiles the keyword lists of rules.
func NewKeywordStrategy(rules *models.RulesConfig) *KeywordStrategy {
	s := &KeywordStrategy{}
	for _, category := range models.CategoryOrder {
		var lowered []string
		for _, kw := range rules.Keywords(category) {
			lowered = append(lowered, strings.ToLower(kw))
		}
		s.lists = append(s.lists, keywordList{category: category, keywords: lowered})
	}
	return s
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Match returns the first category whose list has a keyword contained in text.
func (s *KeywordStrategy) Match(text string) (models.Category, bool) {
	if text == "" {
		return "", false
	}
	for _, list := range s.lists {
		for _, kw := range list.keywords {
			if strings.Contains(text, kw) {
				return list.category, true
			}
		}
	}
	return "", false
}
