package domain

import (
	"fmt"
	"sort"
)

// WeightedField pairs a content field with its lexical boost.
type WeightedField struct {
	Name   string
	Weight float64
}

// FieldWeights is the declared importance of each searchable content field.
// Loaded once, immutable thereafter, safe for concurrent readers.
type FieldWeights struct {
	weights map[string]float64
}

// NewFieldWeights validates a weight table against the schema. Every content
// field must carry a non-negative weight, unknown or non-content fields are
// rejected, and at least one weight must be positive.
func NewFieldWeights(s Schema, table map[string]float64) (FieldWeights, error) {
	weights := make(map[string]float64, len(table))
	for name, w := range table {
		f, ok := s.FieldByName(name)
		if !ok {
			return FieldWeights{}, fmt.Errorf("%w: weight for unknown field %q", ErrConfiguration, name)
		}
		if f.Kind != FieldContent {
			return FieldWeights{}, fmt.Errorf("%w: weight on non-content field %q", ErrConfiguration, name)
		}
		if w < 0 {
			return FieldWeights{}, fmt.Errorf("%w: negative weight %g for field %q", ErrConfiguration, w, name)
		}
		weights[name] = w
	}
	positive := false
	for _, f := range s.ContentFields() {
		w, ok := weights[f.Name]
		if !ok {
			return FieldWeights{}, fmt.Errorf("%w: missing weight for field %q", ErrConfiguration, f.Name)
		}
		if w > 0 {
			positive = true
		}
	}
	if !positive {
		return FieldWeights{}, fmt.Errorf("%w: no field has a positive weight", ErrConfiguration)
	}
	return FieldWeights{weights: weights}, nil
}

// WeightFor returns the configured weight of a field, 0 if undeclared.
func (fw FieldWeights) WeightFor(name string) float64 {
	return fw.weights[name]
}

// Sorted returns the weight table ordered by field name, for deterministic
// clause construction.
func (fw FieldWeights) Sorted() []WeightedField {
	out := make([]WeightedField, 0, len(fw.weights))
	for name, w := range fw.weights {
		out = append(out, WeightedField{Name: name, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
