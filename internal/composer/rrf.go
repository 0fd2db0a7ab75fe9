package composer

import "github.com/scriptorium-dev/quire/internal/engine"

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF blends both signals by rank alone: score(d) = sum of 1/(k + rank)
// over the rankings d appears in. Native sub-scores are carried through for
// inspection but do not influence the composite.
func fuseRRF(lexical, semantic []engine.Hit) []candidate {
	merged := make(map[string]*candidate, len(lexical)+len(semantic))

	for rank, h := range lexical {
		ks := h.Score
		merged[h.ID] = &candidate{
			id:      h.ID,
			score:   1.0 / float64(rrfK+rank+1),
			keyword: &ks,
			order:   h.Order,
			fields:  h.Fields,
		}
	}

	for rank, h := range semantic {
		ss := h.Score
		s := 1.0 / float64(rrfK+rank+1)
		if c, ok := merged[h.ID]; ok {
			c.score += s
			c.semantic = &ss
			continue
		}
		merged[h.ID] = &candidate{
			id:       h.ID,
			score:    s,
			semantic: &ss,
			order:    h.Order,
			fields:   h.Fields,
		}
	}

	out := make([]candidate, 0, len(merged))
	for _, c := range merged {
		out = append(out, *c)
	}
	return out
}
