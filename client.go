// Package quire is the embedded client for the quire search service: hybrid
// lexical and semantic retrieval over a collected-works index, with fluent
// query building.
package quire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scriptorium-dev/quire/internal/composer"
	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/domain/search/request"
	"github.com/scriptorium-dev/quire/internal/engine"
	"github.com/scriptorium-dev/quire/internal/engine/redisearch"
	"github.com/scriptorium-dev/quire/internal/textnorm"
	openaiEmb "github.com/scriptorium-dev/quire/internal/transport/openai"
)

const defaultReadinessTimeout = 10 * time.Second

// Mode selects how lexical and semantic signals combine.
type Mode string

// Blend modes.
const (
	KeywordOnly    Mode = Mode(blend.KeywordOnly)
	SemanticOnly   Mode = Mode(blend.SemanticOnly)
	WeightedHybrid Mode = Mode(blend.WeightedHybrid)
	RankFusion     Mode = Mode(blend.RankFusion)
)

// Normalization selects the per-batch score rescaling policy.
type Normalization string

// Normalization policies.
const (
	MinMax Normalization = Normalization(blend.NormMinMax)
	Max    Normalization = Normalization(blend.NormMax)
)

// Embedder vectorizes query text. Implementations must be deterministic per
// model revision for reproducible semantic scoring.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client is the quire SDK entry point. Safe for concurrent use.
type Client struct {
	store  *redisearch.Store
	search *composer.Composer
	mode   blend.Mode
	limits request.Limits
}

// New creates a Client, connects to the engine, and verifies the index schema.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:          "collected-works",
		keyPrefix:      "quire:",
		vectorField:    "body",
		mode:           WeightedHybrid,
		keywordWeight:  0.5,
		semanticWeight: 0.5,
		normalization:  MinMax,
		candidatePool:  100,
		analyzer:       textnorm.DefaultAnalyzer,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("quire: engine address required (use WithRedis)")
	}

	store, err := redisearch.NewStore(redisearch.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("quire: create engine store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("quire: engine not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store *redisearch.Store, cfg *clientConfig) (*Client, error) {
	schema := domain.CollectedWorks(cfg.index)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	eng := redisearch.New(store, embedder, cfg.keyPrefix, cfg.logger)
	if err := eng.VerifySchema(ctx, schema); err != nil {
		return nil, fmt.Errorf("quire: verify index schema: %w", err)
	}

	table := cfg.fieldWeights
	if len(table) == 0 {
		table = map[string]float64{"title": 3, "headers": 2, "body": 1}
	}
	weights, err := domain.NewFieldWeights(schema, table)
	if err != nil {
		return nil, fmt.Errorf("quire: field weights: %w", err)
	}

	blendCfg, err := blend.New(
		blend.Mode(cfg.mode),
		cfg.keywordWeight, cfg.semanticWeight,
		blend.Normalization(cfg.normalization),
	)
	if err != nil {
		return nil, fmt.Errorf("quire: blend config: %w", err)
	}

	normalizer, err := textnorm.New(cfg.analyzer)
	if err != nil {
		return nil, fmt.Errorf("quire: analyzer: %w", err)
	}

	search, err := composer.New(composer.Config{
		Schema:        schema,
		Weights:       weights,
		Blend:         blendCfg,
		VectorField:   cfg.vectorField,
		ModelID:       cfg.model,
		CandidatePool: cfg.candidatePool,
		SnippetLength: cfg.snippetLength,
		Normalizer:    normalizer,
		Engine:        eng,
		Logger:        cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("quire: composer: %w", err)
	}

	return &Client{
		store:  store,
		search: search,
		mode:   blendCfg.Mode(),
		limits: request.Limits{DefaultSize: cfg.defaultPageSize, MaxSize: cfg.maxPageSize},
	}, nil
}

// buildEmbedder picks the query embedding transport: a user-supplied one, an
// OpenAI-compatible endpoint, or none for keyword-only deployments.
func buildEmbedder(cfg *clientConfig) (engine.Embedder, error) {
	if cfg.embedder != nil {
		return cfg.embedder, nil
	}
	if cfg.model == "" {
		return nil, nil
	}
	emb, err := openaiEmb.New(&openaiEmb.Config{
		APIKey:     cfg.apiKey,
		BaseURL:    cfg.baseURL,
		Model:      cfg.model,
		Dimensions: cfg.dimensions,
		Logger:     cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("quire: create embedder: %w", err)
	}
	return emb, nil
}

// Close releases the engine connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search starts a fluent query against the index.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}
