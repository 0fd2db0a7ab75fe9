package composer

import (
	"unicode/utf8"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/result"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// mapCandidates converts blended candidates into presentation records in the
// order given. It never re-sorts; the ordering is the composer's contract.
func (c *Composer) mapCandidates(cands []candidate) []result.Record {
	records := make([]result.Record, len(cands))
	for i, cand := range cands {
		records[i] = result.New(
			cand.id, cand.score,
			cand.keyword, cand.semantic,
			cand.order,
			c.displayFields(cand.fields),
		)
	}
	return records
}

// mapBrowse converts engine-ordered browse hits, whose constant score is also
// the keyword sub-score of the neutral clause.
func (c *Composer) mapBrowse(hits []engine.Hit) []result.Record {
	records := make([]result.Record, len(hits))
	for i, h := range hits {
		s := h.Score
		records[i] = result.New(h.ID, h.Score, &s, nil, h.Order, c.displayFields(h.Fields))
	}
	return records
}

// displayFields keeps the schema-declared subset of stored fields. Missing
// optional fields are omitted rather than failing the record; the body is
// capped to a snippet so full documents never cross the presentation seam.
func (c *Composer) displayFields(stored map[string]string) map[string]string {
	out := make(map[string]string, len(c.returns))
	for _, name := range c.returns {
		v, ok := stored[name]
		if !ok {
			continue
		}
		if f, _ := c.schema.FieldByName(name); f.Kind == domain.FieldContent && len(v) > c.snippetLen {
			v = truncateSnippet(v, c.snippetLen)
		}
		out[name] = v
	}
	return out
}

// truncateSnippet cuts s to at most max bytes without splitting a rune; the
// cut backs up past any dangling multi-byte sequence.
func truncateSnippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
