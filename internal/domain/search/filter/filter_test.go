package filter

import (
	"errors"
	"testing"

	"github.com/scriptorium-dev/quire/internal/domain"
)

func f64(v float64) *float64 { return &v }

func TestNewAnyOf(t *testing.T) {
	cond, err := NewAnyOf("author", "Erickson", "Rossi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cond.IsMembership() || len(cond.AnyOf()) != 2 {
		t.Errorf("membership condition wrong: %+v", cond)
	}

	if _, err := NewAnyOf("", "x"); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("empty field must be rejected")
	}
	if _, err := NewAnyOf("author"); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("no values must be rejected")
	}
	if _, err := NewAnyOf("author", "Erickson", ""); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("empty value must be rejected")
	}
}

func TestNewRange(t *testing.T) {
	cond, err := NewRange("order", f64(10), f64(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := cond.Range()
	if r == nil || *r.Min() != 10 || *r.Max() != 20 {
		t.Errorf("range condition wrong: %+v", cond)
	}

	if _, err := NewRange("order", nil, f64(20)); err != nil {
		t.Errorf("half-open range must be accepted: %v", err)
	}
	if _, err := NewRange("order", nil, nil); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("unbounded range must be rejected")
	}
	if _, err := NewRange("order", f64(20), f64(10)); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("inverted bounds must be rejected")
	}
}

func TestValidate(t *testing.T) {
	s := domain.CollectedWorks("works")

	author, _ := NewAnyOf("author", "Erickson")
	order, _ := NewRange("order", f64(1), f64(100))
	if err := Validate(s, []Condition{author, order}); err != nil {
		t.Fatalf("valid conditions rejected: %v", err)
	}

	unknown, _ := NewAnyOf("footnotes", "x")
	if err := Validate(s, []Condition{unknown}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("unknown field must be rejected")
	}

	onContent, _ := NewAnyOf("title", "x")
	if err := Validate(s, []Condition{onContent}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("membership on content field must be rejected")
	}

	rangeOnTag, _ := NewRange("author", f64(1), nil)
	if err := Validate(s, []Condition{rangeOnTag}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Error("range on tag field must be rejected")
	}
}
