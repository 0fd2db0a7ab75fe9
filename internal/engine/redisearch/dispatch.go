package redisearch

import (
	"context"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// Engine adapts RediSearch to the engine capability interface.
type Engine struct {
	store     *Store
	embedder  engine.Embedder // nil when no embedding model is deployed
	keyPrefix string
	logger    *zap.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates the adapter. keyPrefix is stripped from engine keys to recover
// document identifiers; it must match the ingestion collaborator's key scheme.
func New(store *Store, embedder engine.Embedder, keyPrefix string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, embedder: embedder, keyPrefix: keyPrefix, logger: logger}
}

// Dispatch translates the plan into FT.SEARCH calls, one per requested
// signal, and returns raw candidate lists. No retries; every failure is
// surfaced as a DispatchError carrying the original detail.
func (e *Engine) Dispatch(ctx context.Context, p *engine.Plan) (*engine.Response, error) {
	resp := &engine.Response{}

	if p.IsBrowse() {
		raw, err := e.search(ctx, browseArgs(p, p.Return))
		if err != nil {
			return nil, err
		}
		// Browse hits carry the neutral clause's constant score.
		hits, total := parsePlain(raw, 1.0)
		resp.Lexical = e.trimKeys(hits)
		resp.Total = total
		return resp, nil
	}

	if p.Lexical != nil && !p.Lexical.Neutral() {
		raw, err := e.search(ctx, lexicalArgs(p, p.Return))
		if err != nil {
			return nil, err
		}
		hits, total := parseScored(raw)
		resp.Lexical = e.trimKeys(hits)
		resp.Total = total
	}

	if p.Semantic != nil {
		if e.embedder == nil {
			return nil, domain.ErrModelUnavailable
		}
		vector, err := e.embedder.Embed(ctx, p.Semantic.QueryText)
		if err != nil {
			return nil, domain.NewDispatchError("EMBED", err)
		}
		raw, err := e.search(ctx, knnArgs(p, vector, p.Return))
		if err != nil {
			return nil, err
		}
		resp.Semantic = e.trimKeys(parseKNN(raw))
	}

	e.logger.Debug("plan dispatched",
		zap.String("index", p.Index),
		zap.Int("lexical_hits", len(resp.Lexical)),
		zap.Int("semantic_hits", len(resp.Semantic)),
	)
	return resp, nil
}

func (e *Engine) search(ctx context.Context, args []string) ([]rueidis.RedisMessage, error) {
	cmd := e.store.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := e.store.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, domain.NewDispatchError("FT.SEARCH", err)
	}
	return raw, nil
}

func (e *Engine) trimKeys(hits []engine.Hit) []engine.Hit {
	if e.keyPrefix == "" {
		return hits
	}
	for i := range hits {
		if len(hits[i].ID) > len(e.keyPrefix) && hits[i].ID[:len(e.keyPrefix)] == e.keyPrefix {
			hits[i].ID = hits[i].ID[len(e.keyPrefix):]
		}
	}
	return hits
}
