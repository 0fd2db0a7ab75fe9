package engine

import "encoding/json"

// Plan is the fully assembled composite query, reconstructable
// deterministically from a request plus the loaded configuration. The
// semantic clause carries query text and model identifier rather than a
// computed vector, so rendering a plan is byte-stable across calls.
type Plan struct {
	Index    string         `json:"index"`
	Lexical  *LexicalClause `json:"lexical,omitempty"`
	Semantic *VectorClause  `json:"semantic,omitempty"`
	Filters  []FilterClause `json:"filters,omitempty"`
	// Return lists the stored fields requested back with each hit.
	Return []string  `json:"return,omitempty"`
	Blend  BlendSpec `json:"blend"`
	// Pool bounds the lexical candidate list, mirroring the semantic
	// clause's k. Blending and pagination happen within this pool.
	Pool int `json:"pool"`
	From int `json:"from"`
	Size int `json:"size"`
}

// WeightedField is a lexical match target with its boost.
type WeightedField struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// LexicalClause matches lemma terms across weighted fields simultaneously.
// Empty Terms is the neutral clause: it matches all documents with constant
// score 1, so it combines with other clauses without biasing the blend.
type LexicalClause struct {
	Terms  []string        `json:"terms"`
	Fields []WeightedField `json:"fields"`
}

// Neutral reports whether the clause matches everything at constant score.
func (c *LexicalClause) Neutral() bool { return len(c.Terms) == 0 }

// VectorClause requests k-nearest-neighbor ranking against a stored embedding
// field, with the query embedded by the identified model at dispatch.
type VectorClause struct {
	Field     string `json:"field"`
	Model     string `json:"model"`
	QueryText string `json:"query_text"`
	K         int    `json:"k"`
}

// FilterClause narrows the candidate set as a hard constraint. Filters never
// contribute to the composite score.
type FilterClause struct {
	Field string   `json:"field"`
	AnyOf []string `json:"any_of,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// BlendSpec records the scoring policy the composer will apply, kept on the
// plan so the debug artifact describes the whole request.
type BlendSpec struct {
	Mode           string  `json:"mode"`
	KeywordWeight  float64 `json:"keyword_weight,omitempty"`
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
	Normalization  string  `json:"normalization,omitempty"`
}

// IsBrowse reports whether the plan has no scoring clause and falls back to
// sequence-order browsing. Browse plans are paginated engine-side.
func (p *Plan) IsBrowse() bool {
	return p.Semantic == nil && (p.Lexical == nil || p.Lexical.Neutral())
}

// Render serializes the plan for inspection. Output is byte-identical for
// identical inputs and configuration.
func (p *Plan) Render() []byte {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		panic(err) // plan contains only marshalable value types
	}
	return b
}
