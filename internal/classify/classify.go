// Package classify suggests a category for a description using a naive-Bayes
// classifier trained on the transactions already in the ledger. It is a local
// fallback for category pre-fill; the remote parser remains the primary path.
package classify

import (
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// Suggester holds a TF-IDF classifier over the ledger's categories.
type Suggester struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

// NewSuggester trains a suggester from the given transactions. The classifier
// needs at least two distinct categories with data; below that the suggester
// stays untrained and Suggest returns no result.
func NewSuggester(txs []domain.Transaction) *Suggester {
	byCategory := make(map[string][]string)
	for _, tx := range txs {
		terms := tokens(tx.Description)
		if tx.Category == "" || len(terms) == 0 {
			continue
		}
		byCategory[tx.Category] = append(byCategory[tx.Category], terms...)
	}

	if len(byCategory) < 2 {
		return &Suggester{}
	}

	s := &Suggester{classes: make([]bayesian.Class, 0, len(byCategory))}
	for cat := range byCategory {
		s.classes = append(s.classes, bayesian.Class(cat))
	}

	s.cl = bayesian.NewClassifierTfIdf(s.classes...)
	for _, class := range s.classes {
		s.cl.Learn(byCategory[string(class)], class)
	}
	s.cl.ConvertTermsFreqToTfIdf()

	return s
}

// Trained reports whether the suggester has enough data to answer.
func (s *Suggester) Trained() bool {
	return s.cl != nil
}

// Suggest returns the best-scoring category for the description, or false
// when untrained or the description carries no usable terms.
func (s *Suggester) Suggest(description string) (string, bool) {
	if s.cl == nil {
		return "", false
	}
	terms := tokens(description)
	if len(terms) == 0 {
		return "", false
	}

	_, idx, _ := s.cl.LogScores(terms)
	return string(s.classes[idx]), true
}

// tokens lowercases and splits on whitespace, additionally emitting single
// Han runes so unsegmented Chinese descriptions still share terms.
func tokens(s string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		out = append(out, f)
		for _, r := range f {
			if unicode.Is(unicode.Han, r) {
				out = append(out, string(r))
			}
		}
	}
	return out
}
