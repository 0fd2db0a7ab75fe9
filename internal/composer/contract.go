package composer

import (
	"context"

	"github.com/scriptorium-dev/quire/internal/engine"
)

// Engine is the dispatch contract consumed by the composer.
type Engine interface {
	Dispatch(ctx context.Context, p *engine.Plan) (*engine.Response, error)
}

// Normalizer lemmatizes raw query text into lexical match terms.
type Normalizer interface {
	Normalize(text string) []string
}
