// Package engine defines the capability boundary to the external search
// engine: lexical matching with per-field boosts, vector k-NN, and hard
// filters. Swapping engines means reimplementing the adapter that translates
// these clauses, not the orchestration.
package engine

import (
	"context"

	"github.com/scriptorium-dev/quire/internal/domain"
)

// Engine is the consumed search engine interface.
type Engine interface {
	// Dispatch executes a composite plan and returns per-signal candidate
	// lists. It performs no retries; failures surface as DispatchError.
	Dispatch(ctx context.Context, p *Plan) (*Response, error)
	// VerifySchema checks the live index against the declared schema.
	// A mismatch is a load-time configuration error.
	VerifySchema(ctx context.Context, s domain.Schema) error
}

// Embedder vectorizes query text via the external embedding model. Consumed
// by adapters at dispatch time so that assembled plans stay vector-free and
// byte-reproducible.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Hit is a raw engine candidate before blending.
type Hit struct {
	ID     string
	Score  float64
	Order  float64
	Fields map[string]string
}

// Response carries the candidate lists of each requested signal, in engine
// rank order. Blending is composer-side.
type Response struct {
	Lexical  []Hit
	Semantic []Hit
	// Total is the engine-reported match count of the lexical or browse
	// query, 0 when only a semantic clause ran.
	Total int
}
