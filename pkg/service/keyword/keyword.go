// Package keyword extracts the most frequent meaningful words from complaint descriptions.
package keyword

import (
	"bufio"
	_ "embed"
	"sort"
	"strings"
	"unicode"

	"github.com/secmon-lab/grievance/pkg/domain/model"
	"golang.org/x/text/unicode/norm"
)

// DefaultTop is the number of words reported when no limit is configured
const DefaultTop = 15

//go:embed stopwords_es.txt
var stopWordsES string

//go:embed stopwords_en.txt
var stopWordsEN string

// Counter ranks alphabetic tokens by frequency, skipping stop words
type Counter struct {
	top       int
	stopWords map[string]struct{}
}

// Option configures a Counter
type Option func(*Counter)

// WithTop sets how many words TopWords returns. Non-positive values are ignored.
func WithTop(n int) Option {
	return func(c *Counter) {
		if n > 0 {
			c.top = n
		}
	}
}

// WithStopWords adds words to ignore on top of the built-in Spanish and English lists
func WithStopWords(words ...string) Option {
	return func(c *Counter) {
		for _, w := range words {
			if w = normalize(strings.TrimSpace(w)); w != "" {
				c.stopWords[w] = struct{}{}
			}
		}
	}
}

// New creates a Counter loaded with the built-in stop words
func New(opts ...Option) *Counter {
	c := &Counter{
		top:       DefaultTop,
		stopWords: make(map[string]struct{}),
	}
	loadStopWords(c.stopWords, stopWordsES)
	loadStopWords(c.stopWords, stopWordsEN)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func loadStopWords(dst map[string]struct{}, list string) {
	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		if w := normalize(strings.TrimSpace(scanner.Text())); w != "" {
			dst[w] = struct{}{}
		}
	}
}

func normalize(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// isAlpha reports whether every rune of s is a letter. Marks are allowed so that
// decomposed accents survive until normalization.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			return false
		}
	}
	return true
}

// IsStopWord reports whether word is ignored by the counter
func (c *Counter) IsStopWord(word string) bool {
	_, ok := c.stopWords[normalize(word)]
	return ok
}

// TopWords tokenizes texts on whitespace and returns the most frequent words.
// Tokens with any non-letter character are dropped whole, so "roto," does not count as "roto".
// Ties keep the order in which words were first seen.
func (c *Counter) TopWords(texts []string) []model.WordCount {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		for _, token := range strings.Fields(text) {
			if !isAlpha(token) {
				continue
			}
			word := normalize(token)
			if _, stop := c.stopWords[word]; stop {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	result := make([]model.WordCount, 0, len(order))
	for _, w := range order {
		result = append(result, model.WordCount{Word: w, Count: counts[w]})
	}

	// stable sort preserves first-seen order among equal counts
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if len(result) > c.top {
		result = result[:c.top]
	}
	return result
}
