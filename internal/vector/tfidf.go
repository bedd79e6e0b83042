package vector

import (
	"math"
	"sort"

	"github.com/hyperjump/reelmatch/pkg/utils"
)

// TFIDF weights terms by raw count times smoothed inverse document frequency,
// idf = ln((1+n)/(1+df)) + 1, and L2-normalizes each vector.
type TFIDF struct {
	tokenizer Tokenizer
}

// NewTFIDF returns a TF-IDF vectorizer using tokenizer.
func NewTFIDF(tokenizer Tokenizer) *TFIDF {
	return &TFIDF{tokenizer: tokenizer}
}

// NewDefaultTFIDF returns a TF-IDF vectorizer over the standard analyzer.
func NewDefaultTFIDF() (*TFIDF, error) {
	tok, err := NewAnalyzerTokenizer("")
	if err != nil {
		return nil, err
	}
	return NewTFIDF(tok), nil
}

// Vectorize fits a vocabulary on texts and returns one vector per text.
// Vocabulary indices are assigned in lexical term order.
func (t *TFIDF) Vectorize(texts []string, generation uint64) []SparseVector {
	counts := make([]map[string]int, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		c := make(map[string]int)
		for _, term := range t.tokenizer.Tokens(text) {
			c[term]++
		}
		for term := range c {
			df[term]++
		}
		counts[i] = c
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = IDF(n, float64(df[term]))
	}

	out := make([]SparseVector, len(texts))
	for i, c := range counts {
		v := SparseVector{
			Terms:      make([]int, 0, len(c)),
			Weights:    make([]float64, 0, len(c)),
			Generation: generation,
		}
		for term := range c {
			v.Terms = append(v.Terms, vocab[term])
		}
		sort.Ints(v.Terms)
		for _, idx := range v.Terms {
			v.Weights = append(v.Weights, float64(c[terms[idx]])*idf[idx])
		}
		utils.NormalizeL2(v.Weights)
		out[i] = v
	}
	return out
}

// IDF returns the smoothed inverse document frequency of a term present in df of n documents.
func IDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}
