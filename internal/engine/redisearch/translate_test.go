package redisearch

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/scriptorium-dev/quire/internal/engine"
)

func f64(v float64) *float64 { return &v }

func testPlan() *engine.Plan {
	return &engine.Plan{
		Index: "works",
		Lexical: &engine.LexicalClause{
			Terms: []string{"trance", "induct"},
			Fields: []engine.WeightedField{
				{Name: "body", Weight: 1},
				{Name: "headers", Weight: 2},
				{Name: "title", Weight: 3},
			},
		},
		Semantic: &engine.VectorClause{
			Field: "body_vector", Model: "embed-v1", QueryText: "trance induction", K: 50,
		},
		Pool: 50,
		From: 0,
		Size: 10,
	}
}

func TestLexicalQuery_WeightedGroups(t *testing.T) {
	p := testPlan()
	got := lexicalQuery(p.Lexical, nil)
	want := "((@body:(trance induct))=>{$weight: 1;} | (@headers:(trance induct))=>{$weight: 2;} | (@title:(trance induct))=>{$weight: 3;})"
	if got != want {
		t.Errorf("lexical query:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestLexicalQuery_SkipsZeroWeightFields(t *testing.T) {
	c := &engine.LexicalClause{
		Terms: []string{"trance"},
		Fields: []engine.WeightedField{
			{Name: "body", Weight: 0},
			{Name: "title", Weight: 3},
		},
	}
	got := lexicalQuery(c, nil)
	if strings.Contains(got, "@body") {
		t.Errorf("zero-weight field must be omitted from the query: %s", got)
	}
}

func TestLexicalQuery_FilterConjunction(t *testing.T) {
	p := testPlan()
	filters := []engine.FilterClause{
		{Field: "author", AnyOf: []string{"Erickson", "Rossi"}},
		{Field: "order", Min: f64(10), Max: f64(20)},
	}
	got := lexicalQuery(p.Lexical, filters)
	if !strings.HasPrefix(got, "@author:{Erickson|Rossi} @order:[10 20] (") {
		t.Errorf("filters must prefix the match clause as hard constraints: %s", got)
	}
}

func TestLexicalQuery_NeutralClause(t *testing.T) {
	neutral := &engine.LexicalClause{Fields: []engine.WeightedField{{Name: "title", Weight: 3}}}
	if got := lexicalQuery(neutral, nil); got != "*" {
		t.Errorf("neutral clause without filters = %q, want *", got)
	}
	filters := []engine.FilterClause{{Field: "author", AnyOf: []string{"Erickson"}}}
	if got := lexicalQuery(neutral, filters); got != "@author:{Erickson}" {
		t.Errorf("neutral clause with filters = %q", got)
	}
}

func TestLexicalQuery_EscapesTerms(t *testing.T) {
	c := &engine.LexicalClause{
		Terms:  []string{"c++", "wake-up"},
		Fields: []engine.WeightedField{{Name: "title", Weight: 1}},
	}
	got := lexicalQuery(c, nil)
	if !strings.Contains(got, `c\+\+`) || !strings.Contains(got, `wake\-up`) {
		t.Errorf("query syntax characters must be escaped: %s", got)
	}
}

func TestTagFilter_EscapesValues(t *testing.T) {
	got := tagFilter("author", []string{"Erickson, Milton H."})
	want := `@author:{Erickson\,\ Milton\ H\.}`
	if got != want {
		t.Errorf("tag filter:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestNumericFilter_Bounds(t *testing.T) {
	cases := []struct {
		name string
		f    engine.FilterClause
		want string
	}{
		{"both bounds", engine.FilterClause{Field: "order", Min: f64(1.5), Max: f64(99)}, "@order:[1.5 99]"},
		{"min only", engine.FilterClause{Field: "order", Min: f64(10)}, "@order:[10 +inf]"},
		{"max only", engine.FilterClause{Field: "order", Max: f64(10)}, "@order:[-inf 10]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := numericFilter(tc.f); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLexicalArgs_Deterministic(t *testing.T) {
	p := testPlan()
	ret := []string{"title", "headers", "body", "order", "author"}

	a := lexicalArgs(p, ret)
	b := lexicalArgs(p, ret)
	if len(a) != len(b) {
		t.Fatalf("argument count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("argument %d differs: %q vs %q", i, a[i], b[i])
		}
	}

	if a[0] != "works" {
		t.Errorf("first argument = %q, want index name", a[0])
	}
	if a[2] != "WITHSCORES" {
		t.Errorf("lexical search must request scores, got %q", a[2])
	}
	joined := strings.Join(a, " ")
	if !strings.Contains(joined, "LIMIT 0 50") {
		t.Errorf("lexical search must fetch the full candidate pool: %s", joined)
	}
	if !strings.HasSuffix(joined, "DIALECT 2") {
		t.Errorf("query must pin dialect 2: %s", joined)
	}
}

func TestBrowseArgs_SortsByOrder(t *testing.T) {
	p := &engine.Plan{
		Index:   "works",
		Lexical: &engine.LexicalClause{},
		Filters: []engine.FilterClause{{Field: "author", AnyOf: []string{"Erickson"}}},
		From:    20,
		Size:    10,
	}
	args := browseArgs(p, nil)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "SORTBY order ASC") {
		t.Errorf("browse must sort by the sequence key: %s", joined)
	}
	if !strings.Contains(joined, "LIMIT 20 10") {
		t.Errorf("browse must paginate engine-side: %s", joined)
	}
	if args[1] != "@author:{Erickson}" {
		t.Errorf("browse query = %q, want the bare filter", args[1])
	}
}

func TestBrowseArgs_NoFilters(t *testing.T) {
	p := &engine.Plan{Index: "works", Lexical: &engine.LexicalClause{}, Size: 10}
	args := browseArgs(p, nil)
	if args[1] != "*" {
		t.Errorf("unfiltered browse query = %q, want *", args[1])
	}
}

func TestKNNArgs(t *testing.T) {
	p := testPlan()
	vec := []float32{0.25, -1.5}
	args := knnArgs(p, vec, []string{"title"})
	joined := strings.Join(args, " ")

	if args[1] != "*=>[KNN 50 @body_vector $BLOB AS __vector_score]" {
		t.Errorf("unfiltered knn query = %q", args[1])
	}
	if !strings.Contains(joined, "SORTBY __vector_score ASC") {
		t.Errorf("knn must sort by distance ascending: %s", joined)
	}
	if !strings.Contains(joined, "PARAMS 2 BLOB") {
		t.Errorf("vector must travel as a query parameter: %s", joined)
	}

	p.Filters = []engine.FilterClause{{Field: "author", AnyOf: []string{"Erickson"}}}
	args = knnArgs(p, vec, []string{"title"})
	if args[1] != "(@author:{Erickson})=>[KNN 50 @body_vector $BLOB AS __vector_score]" {
		t.Errorf("filtered knn query = %q", args[1])
	}
}

func TestVectorToBytes_LittleEndianFloat32(t *testing.T) {
	got := vectorToBytes([]float32{1.0, -2.5})
	if len(got) != 8 {
		t.Fatalf("blob length = %d, want 8", len(got))
	}
	first := math.Float32frombits(binary.LittleEndian.Uint32([]byte(got)[0:4]))
	second := math.Float32frombits(binary.LittleEndian.Uint32([]byte(got)[4:8]))
	if first != 1.0 || second != -2.5 {
		t.Errorf("decoded blob = [%g, %g], want [1, -2.5]", first, second)
	}
}
