// Package result models the normalized records handed to the presentation
// layer. Records are created per response and carry no cursor state.
package result

// Record is a single ranked hit: document identifier, composite score,
// per-signal sub-scores when available, and the display field subset.
type Record struct {
	id            string
	score         float64
	keywordScore  *float64
	semanticScore *float64
	order         float64
	fields        map[string]string
}

// New creates a result record. Sub-score pointers are nil when the blend mode
// omitted that signal.
func New(
	id string, score float64,
	keywordScore, semanticScore *float64,
	order float64,
	fields map[string]string,
) Record {
	return Record{
		id:            id,
		score:         score,
		keywordScore:  keywordScore,
		semanticScore: semanticScore,
		order:         order,
		fields:        fields,
	}
}

// ID returns the document identifier.
func (r *Record) ID() string { return r.id }

// Score returns the composite relevance score.
func (r *Record) Score() float64 { return r.score }

// KeywordScore returns the lexical sub-score, false when the signal was omitted.
func (r *Record) KeywordScore() (float64, bool) {
	if r.keywordScore == nil {
		return 0, false
	}
	return *r.keywordScore, true
}

// SemanticScore returns the semantic sub-score, false when the signal was omitted.
func (r *Record) SemanticScore() (float64, bool) {
	if r.semanticScore == nil {
		return 0, false
	}
	return *r.semanticScore, true
}

// Order returns the metadata sequencing key.
func (r *Record) Order() float64 { return r.order }

// Fields returns the display fields present on the document. Optional fields
// missing from the stored document are simply absent.
func (r *Record) Fields() map[string]string { return r.fields }

// Field looks up a single display field.
func (r *Record) Field(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}
