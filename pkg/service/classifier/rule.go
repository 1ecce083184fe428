package classifier

import (
	"context"

	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

// Rule labels text with the category whose keywords appear most often.
// The earliest configured category wins a tie. Text matching no keyword gets the fallback.
type Rule struct {
	categories []Category
	keywords   []map[string]struct{}
	fallback   types.CategoryID
}

var _ interfaces.Classifier = &Rule{}

// NewRule builds a keyword classifier. fallback may be empty.
func NewRule(categories []Category, fallback types.CategoryID) (*Rule, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	r := &Rule{
		categories: categories,
		keywords:   make([]map[string]struct{}, len(categories)),
		fallback:   fallback,
	}
	for i, c := range categories {
		set := make(map[string]struct{}, len(c.Keywords))
		for _, kw := range c.Keywords {
			for _, tok := range tokens(kw) {
				set[tok] = struct{}{}
			}
		}
		r.keywords[i] = set
	}
	return r, nil
}

func (r *Rule) Classify(ctx context.Context, text string) (string, error) {
	words := tokens(text)

	best, bestHits := -1, 0
	for i, set := range r.keywords {
		hits := 0
		for _, w := range words {
			if _, ok := set[w]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}

	if best < 0 {
		return r.fallback.String(), nil
	}
	return r.categories[best].ID.String(), nil
}
