package blend

import (
	"errors"
	"testing"

	"github.com/scriptorium-dev/quire/internal/domain"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New("", 0.5, 0.5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != WeightedHybrid {
		t.Errorf("default mode = %q, want weighted_hybrid", c.Mode())
	}
	if c.Normalization() != NormMinMax {
		t.Errorf("default normalization = %q, want min_max", c.Normalization())
	}
}

func TestNew_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mode   Mode
		wk, ws float64
		norm   Normalization
	}{
		{"unknown mode", "fuzzy", 1, 1, NormMinMax},
		{"negative keyword weight", WeightedHybrid, -1, 1, NormMinMax},
		{"negative semantic weight", WeightedHybrid, 1, -1, NormMinMax},
		{"hybrid zero weights", WeightedHybrid, 0, 0, NormMinMax},
		{"unknown normalization", KeywordOnly, 0, 0, "zscore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.mode, tc.wk, tc.ws, tc.norm); !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestNew_ZeroWeightsOutsideHybrid(t *testing.T) {
	for _, m := range []Mode{KeywordOnly, SemanticOnly, RankFusion} {
		if _, err := New(m, 0, 0, NormMinMax); err != nil {
			t.Errorf("mode %q must accept zero weights: %v", m, err)
		}
	}
}

func TestMode_Signals(t *testing.T) {
	cases := []struct {
		mode              Mode
		keyword, semantic bool
	}{
		{KeywordOnly, true, false},
		{SemanticOnly, false, true},
		{WeightedHybrid, true, true},
		{RankFusion, true, true},
	}
	for _, tc := range cases {
		if tc.mode.NeedsKeyword() != tc.keyword {
			t.Errorf("%q NeedsKeyword = %v, want %v", tc.mode, tc.mode.NeedsKeyword(), tc.keyword)
		}
		if tc.mode.NeedsSemantic() != tc.semantic {
			t.Errorf("%q NeedsSemantic = %v, want %v", tc.mode, tc.mode.NeedsSemantic(), tc.semantic)
		}
	}
}

func TestWithMode_Revalidates(t *testing.T) {
	c, err := New(KeywordOnly, 0, 0, NormMinMax)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.WithMode(SemanticOnly); err != nil {
		t.Errorf("semantic_only override must be accepted: %v", err)
	}
	if _, err := c.WithMode(WeightedHybrid); !errors.Is(err, domain.ErrConfiguration) {
		t.Error("hybrid override with zero weights must be rejected")
	}
}
