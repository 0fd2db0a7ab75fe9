package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
)

func TestNew_TrimsAndDefaults(t *testing.T) {
	r, err := New("  trance induction  ", "", nil, 0, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "trance induction" {
		t.Errorf("query = %q, want trimmed", r.Query())
	}
	if r.Size() != DefaultPageSize {
		t.Errorf("size = %d, want default %d", r.Size(), DefaultPageSize)
	}
}

func TestNew_EmptyQueryIsValid(t *testing.T) {
	r, err := New("", "", nil, 0, 0, false)
	if err != nil {
		t.Fatalf("empty query must be well-formed: %v", err)
	}
	if r.Query() != "" {
		t.Errorf("query = %q, want empty", r.Query())
	}
}

func TestNew_Rejections(t *testing.T) {
	if _, err := New(strings.Repeat("a", MaxQueryLength+1), "", nil, 0, 0, false); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Error("overlong query must be rejected")
	}
	if _, err := New("q", blend.Mode("fuzzy"), nil, 0, 0, false); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Error("unknown mode must be rejected")
	}
	if _, err := New("q", "", nil, -1, 0, false); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Error("negative offset must be rejected")
	}
}

func TestNew_SizeCapped(t *testing.T) {
	r, err := New("q", "", nil, 0, MaxPageSize+50, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != MaxPageSize {
		t.Errorf("size = %d, want capped at %d", r.Size(), MaxPageSize)
	}
}

func TestNewBounded_ConfiguredLimits(t *testing.T) {
	lim := Limits{DefaultSize: 5, MaxSize: 50}

	r, err := NewBounded("q", "", nil, 0, 0, false, lim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != 5 {
		t.Errorf("size = %d, want configured default 5", r.Size())
	}

	r, err = NewBounded("q", "", nil, 0, 100, false, lim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != 50 {
		t.Errorf("size = %d, want clamped to configured max 50", r.Size())
	}
}

func TestNewBounded_ZeroLimitsFallBack(t *testing.T) {
	r, err := NewBounded("q", "", nil, 0, MaxPageSize+1, false, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != MaxPageSize {
		t.Errorf("size = %d, want package max %d", r.Size(), MaxPageSize)
	}
}
