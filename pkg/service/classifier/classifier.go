// Package classifier provides Classifier implementations that label complaint text.
package classifier

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"golang.org/x/text/unicode/norm"
)

// Category is a label with the keywords that indicate it
type Category struct {
	ID          types.CategoryID
	Description string
	Keywords    []string
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return goerr.New("at least one category is required")
	}
	seen := make(map[types.CategoryID]struct{}, len(categories))
	for _, c := range categories {
		if err := c.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if _, dup := seen[c.ID]; dup {
			return goerr.New("duplicate category", goerr.V("category", c.ID))
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// tokens splits text into lower-cased NFC words with surrounding punctuation removed
func tokens(text string) []string {
	fields := strings.FieldsFunc(norm.NFC.String(strings.ToLower(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
	return fields
}
