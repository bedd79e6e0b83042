package vector

import (
	"fmt"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/registry"
)

// minTokenRunes drops single-character tokens.
const minTokenRunes = 2

// AnalyzerTokenizer tokenizes with a Bleve analyzer: unicode word segmentation,
// lowercasing, and English stop-word removal for the standard analyzer.
type AnalyzerTokenizer struct {
	analyzer analysis.Analyzer
}

// NewAnalyzerTokenizer returns a tokenizer backed by the named Bleve analyzer.
// An empty name selects the standard analyzer.
func NewAnalyzerTokenizer(name string) (*AnalyzerTokenizer, error) {
	if name == "" {
		name = standard.Name
	}
	a, err := registry.NewCache().AnalyzerNamed(name)
	if err != nil {
		return nil, fmt.Errorf("load analyzer %q: %w", name, err)
	}
	return &AnalyzerTokenizer{analyzer: a}, nil
}

// Tokens returns the analyzed terms of text in order, keeping repeats.
func (t *AnalyzerTokenizer) Tokens(text string) []string {
	stream := t.analyzer.Analyze([]byte(text))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < minTokenRunes {
			continue
		}
		out = append(out, string(tok.Term))
	}
	return out
}
