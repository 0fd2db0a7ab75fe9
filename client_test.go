package quire

import (
	"context"
	"testing"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without an engine address")
	}
}

func TestSearchBuilder_InvalidFilterSurfacesAtDo(t *testing.T) {
	min, max := 20.0, 10.0
	b := (&SearchBuilder{}).
		Query("trance").
		OrderBetween(&min, &max)

	if _, err := b.Do(context.Background()); err == nil {
		t.Fatal("expected inverted range to fail at Do")
	}
}

func TestSearchBuilder_EmptyWhereValues(t *testing.T) {
	b := (&SearchBuilder{}).Where("author")
	if _, err := b.Do(context.Background()); err == nil {
		t.Fatal("expected membership filter without values to fail at Do")
	}
}
