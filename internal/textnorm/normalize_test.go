package textnorm

import (
	"errors"
	"strings"
	"testing"

	"github.com/scriptorium-dev/quire/internal/domain"
)

func TestNew_UnknownAnalyzer(t *testing.T) {
	_, err := New("klingon")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Name() != DefaultAnalyzer {
		t.Errorf("default analyzer = %q, want %q", n.Name(), DefaultAnalyzer)
	}

	first := n.Normalize("Trance Inductions and the Utilization Approach")
	for i := 0; i < 3; i++ {
		again := n.Normalize("Trance Inductions and the Utilization Approach")
		if strings.Join(again, " ") != strings.Join(first, " ") {
			t.Fatalf("normalization not deterministic: %v vs %v", first, again)
		}
	}
	if len(first) == 0 {
		t.Fatal("expected terms from a non-empty query")
	}
	for _, term := range first {
		if term != strings.ToLower(term) {
			t.Errorf("term %q not lowercased", term)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	once := n.Normalize("hypnotic suggestions")
	twice := n.Normalize(strings.Join(once, " "))
	if strings.Join(once, " ") != strings.Join(twice, " ") {
		t.Errorf("normalization not idempotent: %v -> %v", once, twice)
	}
}

func TestNormalize_DropsStopwords(t *testing.T) {
	n, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	terms := n.Normalize("the and of")
	if len(terms) != 0 {
		t.Errorf("stopword-only query should yield no terms, got %v", terms)
	}
}

func TestNormalize_BlankInput(t *testing.T) {
	n, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := n.Normalize("   \t\n"); got != nil {
		t.Errorf("blank input should yield nil, got %v", got)
	}
}
