package domain

import "fmt"

// FieldKind classifies a document field for query construction.
type FieldKind string

// Field kinds.
const (
	// FieldContent is free text with a derived embedding vector.
	FieldContent FieldKind = "content"
	// FieldTag is categorical metadata usable in equality/membership filters.
	FieldTag FieldKind = "tag"
	// FieldNumeric is numeric metadata usable in range filters.
	FieldNumeric FieldKind = "numeric"
)

// OrderField is the metadata sequencing key used for tie-breaking and browse
// ordering.
const OrderField = "order"

// Field describes one indexed document field.
type Field struct {
	Name string
	Kind FieldKind
	// VectorField names the stored embedding for a content field.
	VectorField string
}

// Schema describes the fields the ingestion collaborator writes into the
// engine index. The query layer depends only on this description, never on
// ingestion internals.
type Schema struct {
	index  string
	fields []Field
	byName map[string]Field
}

// NewSchema validates and creates a schema description.
func NewSchema(index string, fields []Field) (Schema, error) {
	if index == "" {
		return Schema{}, fmt.Errorf("%w: index name is required", ErrConfiguration)
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("%w: schema has no fields", ErrConfiguration)
	}
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("%w: schema field with empty name", ErrConfiguration)
		}
		if _, dup := byName[f.Name]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate schema field %q", ErrConfiguration, f.Name)
		}
		if f.Kind == FieldContent && f.VectorField == "" {
			return Schema{}, fmt.Errorf("%w: content field %q has no vector field", ErrConfiguration, f.Name)
		}
		byName[f.Name] = f
	}
	return Schema{index: index, fields: fields, byName: byName}, nil
}

// Index returns the engine index name the schema is bound to.
func (s Schema) Index() string { return s.index }

// Fields returns all fields in declaration order.
func (s Schema) Fields() []Field { return s.fields }

// FieldByName looks up a field by name.
func (s Schema) FieldByName(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// ContentFields returns the searchable text fields in declaration order.
func (s Schema) ContentFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Kind == FieldContent {
			out = append(out, f)
		}
	}
	return out
}

// MetadataFields returns the filterable tag and numeric fields in declaration order.
func (s Schema) MetadataFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Kind == FieldTag || f.Kind == FieldNumeric {
			out = append(out, f)
		}
	}
	return out
}

// CollectedWorks returns the fixed schema of the personal document archive:
// three weighted content fields plus sequencing and provenance metadata.
func CollectedWorks(index string) Schema {
	s, err := NewSchema(index, []Field{
		{Name: "title", Kind: FieldContent, VectorField: "title_vector"},
		{Name: "headers", Kind: FieldContent, VectorField: "headers_vector"},
		{Name: "body", Kind: FieldContent, VectorField: "body_vector"},
		{Name: OrderField, Kind: FieldNumeric},
		{Name: "author", Kind: FieldTag},
		{Name: "volume", Kind: FieldTag},
		{Name: "section", Kind: FieldTag},
		{Name: "chapter", Kind: FieldTag},
	})
	if err != nil {
		panic(err) // static definition, cannot fail
	}
	return s
}
