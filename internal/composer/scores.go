package composer

import (
	"sort"

	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// signal identifies which sub-score a single-signal candidate carries.
type signal int

const (
	signalKeyword signal = iota
	signalSemantic
)

// candidate is a blended hit before pagination and mapping.
type candidate struct {
	id       string
	score    float64
	keyword  *float64
	semantic *float64
	order    float64
	fields   map[string]string
}

// singleSignal adopts one candidate list as-is: the composite score is the
// clause's native score and the other signal's weight is irrelevant.
func singleSignal(hits []engine.Hit, sig signal) []candidate {
	out := make([]candidate, len(hits))
	for i, h := range hits {
		s := h.Score
		c := candidate{id: h.ID, score: s, order: h.Order, fields: h.Fields}
		if sig == signalKeyword {
			c.keyword = &s
		} else {
			c.semantic = &s
		}
		out[i] = c
	}
	return out
}

// fuseWeighted normalizes each signal's batch onto a common range, then
// blends per-document: score = w_k*keyword + w_s*semantic. Normalization
// before weighting is mandatory because lexical and vector native scores are
// not on comparable scales. A document absent from one list scores 0 on that
// signal.
func fuseWeighted(lexical, semantic []engine.Hit, wKeyword, wSemantic float64, norm blend.Normalization) []candidate {
	keywordScores := normalizeBatch(lexical, norm)
	semanticScores := normalizeBatch(semantic, norm)

	merged := make(map[string]*candidate, len(lexical)+len(semantic))
	for _, h := range lexical {
		ks := keywordScores[h.ID]
		zero := 0.0
		merged[h.ID] = &candidate{
			id: h.ID, keyword: &ks, semantic: &zero,
			order: h.Order, fields: h.Fields,
		}
	}
	for _, h := range semantic {
		ss := semanticScores[h.ID]
		if c, ok := merged[h.ID]; ok {
			c.semantic = &ss
			continue
		}
		zero := 0.0
		merged[h.ID] = &candidate{
			id: h.ID, keyword: &zero, semantic: &ss,
			order: h.Order, fields: h.Fields,
		}
	}

	out := make([]candidate, 0, len(merged))
	for _, c := range merged {
		c.score = wKeyword**c.keyword + wSemantic**c.semantic
		out = append(out, *c)
	}
	return out
}

// normalizeBatch rescales one candidate batch onto [0,1] under the policy.
func normalizeBatch(hits []engine.Hit, norm blend.Normalization) map[string]float64 {
	out := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return out
	}

	minScore, maxScore := hits[0].Score, hits[0].Score
	for _, h := range hits {
		if h.Score < minScore {
			minScore = h.Score
		}
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	for _, h := range hits {
		out[h.ID] = rescale(h.Score, minScore, maxScore, norm)
	}
	return out
}

func rescale(s, min, max float64, norm blend.Normalization) float64 {
	switch norm {
	case blend.NormMax:
		if max <= 0 {
			return 0
		}
		return s / max
	default: // min_max
		if max == min {
			// A uniform batch carries no ranking information; treat every
			// member as a full-strength match rather than zeroing the signal.
			if max > 0 {
				return 1
			}
			return 0
		}
		return (s - min) / (max - min)
	}
}

// sortCandidates orders by composite score descending; equal scores resolve
// by the metadata sequencing key ascending, then identifier, so pagination is
// stable and reproducible regardless of engine arrival order.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].order != cands[j].order {
			return cands[i].order < cands[j].order
		}
		return cands[i].id < cands[j].id
	})
}
