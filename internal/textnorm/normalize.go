// Package textnorm lemmatizes raw query text into a canonical term sequence
// for lexical matching.
package textnorm

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/scriptorium-dev/quire/internal/domain"

	// Fallback analyzer without stemming, selectable via configuration.
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// DefaultAnalyzer is the analyzer used when none is configured. The English
// analyzer lowercases, drops stopwords, and stems, which approximates the
// lemmatized index fields the ingestion collaborator writes.
const DefaultAnalyzer = en.AnalyzerName

type analyzer interface {
	Analyze(input []byte) analysis.TokenStream
}

// Normalizer turns raw text into an ordered lemma token sequence. It is
// stateless after construction and safe for concurrent use.
type Normalizer struct {
	name     string
	analyzer analyzer
}

// New resolves an analyzer by name from the bleve registry. An unknown name
// is a configuration error.
func New(analyzerName string) (*Normalizer, error) {
	if analyzerName == "" {
		analyzerName = DefaultAnalyzer
	}
	cache := registry.NewCache()
	a, err := cache.AnalyzerNamed(analyzerName)
	if err != nil {
		return nil, fmt.Errorf("%w: analyzer %q: %v", domain.ErrConfiguration, analyzerName, err)
	}
	return &Normalizer{name: analyzerName, analyzer: a}, nil
}

// Name returns the resolved analyzer name.
func (n *Normalizer) Name() string { return n.name }

// Normalize tokenizes and lemmatizes text. Deterministic for a given analyzer
// version; empty or blank input yields an empty sequence and never errors.
func (n *Normalizer) Normalize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	stream := n.analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}
