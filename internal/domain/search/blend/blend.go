// Package blend declares the policy for combining lexical and semantic
// relevance signals into one composite score.
package blend

import (
	"fmt"

	"github.com/scriptorium-dev/quire/internal/domain"
)

// Mode is the signal blending strategy.
type Mode string

// Blending modes.
const (
	// KeywordOnly scores by the lexical clause alone; the semantic clause is
	// omitted entirely.
	KeywordOnly Mode = "keyword_only"
	// SemanticOnly scores by the semantic clause alone.
	SemanticOnly Mode = "semantic_only"
	// WeightedHybrid blends normalized sub-scores under per-signal weights.
	WeightedHybrid Mode = "weighted_hybrid"
	// RankFusion blends by reciprocal rank, ignoring native score scales.
	RankFusion Mode = "rank_fusion"
)

// IsValid reports whether the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == KeywordOnly || m == SemanticOnly || m == WeightedHybrid || m == RankFusion
}

// NeedsSemantic reports whether the mode requests vector similarity.
func (m Mode) NeedsSemantic() bool {
	return m == SemanticOnly || m == WeightedHybrid || m == RankFusion
}

// NeedsKeyword reports whether the mode requests lexical matching.
func (m Mode) NeedsKeyword() bool {
	return m == KeywordOnly || m == WeightedHybrid || m == RankFusion
}

// Normalization rescales per-signal sub-scores onto a common range before
// weighting. Lexical and vector scores are not on comparable scales, so this
// step is mandatory for WeightedHybrid.
type Normalization string

// Normalization policies.
const (
	// NormMinMax rescales each candidate batch to [0,1] by min and max.
	NormMinMax Normalization = "min_max"
	// NormMax divides each candidate batch by its maximum score.
	NormMax Normalization = "max"
)

// IsValid reports whether the normalization policy is supported.
func (n Normalization) IsValid() bool {
	return n == NormMinMax || n == NormMax
}

// Config is an immutable blending configuration, validated at construction.
type Config struct {
	mode           Mode
	keywordWeight  float64
	semanticWeight float64
	norm           Normalization
}

// New validates and creates a blending configuration. Weights must be
// non-negative; WeightedHybrid additionally requires them to sum positive.
func New(mode Mode, keywordWeight, semanticWeight float64, norm Normalization) (Config, error) {
	if mode == "" {
		mode = WeightedHybrid
	}
	if !mode.IsValid() {
		return Config{}, fmt.Errorf("%w: unknown blend mode %q", domain.ErrConfiguration, mode)
	}
	if keywordWeight < 0 || semanticWeight < 0 {
		return Config{}, fmt.Errorf("%w: blend weights must be non-negative", domain.ErrConfiguration)
	}
	if mode == WeightedHybrid && keywordWeight+semanticWeight <= 0 {
		return Config{}, fmt.Errorf("%w: hybrid blend weights must sum positive", domain.ErrConfiguration)
	}
	if norm == "" {
		norm = NormMinMax
	}
	if !norm.IsValid() {
		return Config{}, fmt.Errorf("%w: unknown normalization %q", domain.ErrConfiguration, norm)
	}
	return Config{
		mode:           mode,
		keywordWeight:  keywordWeight,
		semanticWeight: semanticWeight,
		norm:           norm,
	}, nil
}

// Mode returns the blending mode.
func (c Config) Mode() Mode { return c.mode }

// KeywordWeight returns the lexical signal weight.
func (c Config) KeywordWeight() float64 { return c.keywordWeight }

// SemanticWeight returns the semantic signal weight.
func (c Config) SemanticWeight() float64 { return c.semanticWeight }

// Normalization returns the sub-score normalization policy.
func (c Config) Normalization() Normalization { return c.norm }

// WithMode returns a copy of the configuration under a different mode,
// re-validated. Used for per-request mode overrides.
func (c Config) WithMode(m Mode) (Config, error) {
	return New(m, c.keywordWeight, c.semanticWeight, c.norm)
}
