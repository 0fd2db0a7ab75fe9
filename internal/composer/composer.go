// Package composer assembles composite retrieval plans from user requests and
// the loaded configuration, owns dispatch, and blends the returned signals
// into one ranked result page.
package composer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/domain/search/filter"
	"github.com/scriptorium-dev/quire/internal/domain/search/request"
	"github.com/scriptorium-dev/quire/internal/domain/search/result"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// DefaultSnippetLength caps the body display field per record.
const DefaultSnippetLength = 300

// Config wires a Composer. All values are read-only after construction.
type Config struct {
	Schema  domain.Schema
	Weights domain.FieldWeights
	Blend   blend.Config
	// VectorField names the content field whose stored vectors the semantic
	// clause targets.
	VectorField string
	// ModelID identifies the deployed embedding model; empty disables
	// semantic scoring.
	ModelID string
	// CandidatePool bounds per-signal recall (the k of the vector clause and
	// the lexical list alike). It trades recall against latency and must
	// cover the deepest page requested plus expected filter attrition.
	CandidatePool int
	SnippetLength int
	Normalizer    Normalizer
	Engine        Engine
	Logger        *zap.Logger
}

// Composer deterministically assembles composite plans and blends responses.
// It holds no query-scoped state and is safe for concurrent callers.
type Composer struct {
	schema      domain.Schema
	weights     domain.FieldWeights
	blend       blend.Config
	vectorField string
	modelID     string
	pool        int
	snippetLen  int
	returns     []string
	norm        Normalizer
	engine      Engine
	logger      *zap.Logger
}

// New validates the configuration and creates a Composer. All configuration
// failures are fatal here, before any query is accepted.
func New(cfg Config) (*Composer, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: engine is required", domain.ErrConfiguration)
	}
	if cfg.Normalizer == nil {
		return nil, fmt.Errorf("%w: normalizer is required", domain.ErrConfiguration)
	}
	if cfg.CandidatePool <= 0 {
		return nil, fmt.Errorf("%w: candidate pool must be positive", domain.ErrConfiguration)
	}

	f, ok := cfg.Schema.FieldByName(cfg.VectorField)
	if !ok || f.Kind != domain.FieldContent {
		return nil, fmt.Errorf("%w: vector target %q is not a content field",
			domain.ErrConfiguration, cfg.VectorField)
	}

	if cfg.Blend.Mode().NeedsSemantic() && cfg.ModelID == "" {
		return nil, fmt.Errorf("%w: blend mode %q requires a deployed embedding model identifier",
			domain.ErrConfiguration, cfg.Blend.Mode())
	}

	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = DefaultSnippetLength
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Composer{
		schema:      cfg.Schema,
		weights:     cfg.Weights,
		blend:       cfg.Blend,
		vectorField: f.VectorField,
		modelID:     cfg.ModelID,
		pool:        cfg.CandidatePool,
		snippetLen:  cfg.SnippetLength,
		returns:     returnFields(cfg.Schema),
		norm:        cfg.Normalizer,
		engine:      cfg.Engine,
		logger:      cfg.Logger,
	}, nil
}

// Page is one ranked result page. Plan is populated only for debug requests
// and is the exact pre-dispatch composite query, unchanged by dispatch.
type Page struct {
	Records []result.Record
	Total   int
	Plan    *engine.Plan
}

// BuildPlan deterministically assembles the composite query for a request.
// Pure with respect to the engine: no dispatch, no side effects.
func (c *Composer) BuildPlan(req *request.Request) (*engine.Plan, error) {
	if err := filter.Validate(c.schema, req.Filters()); err != nil {
		return nil, err
	}

	mode, bcfg, err := c.resolveBlend(req.Mode())
	if err != nil {
		return nil, err
	}

	p := &engine.Plan{
		Index:   c.schema.Index(),
		Filters: filterClauses(req.Filters()),
		Return:  c.returns,
		Blend: engine.BlendSpec{
			Mode:           string(mode),
			KeywordWeight:  bcfg.KeywordWeight(),
			SemanticWeight: bcfg.SemanticWeight(),
			Normalization:  string(bcfg.Normalization()),
		},
		Pool: c.pool,
		From: req.From(),
		Size: req.Size(),
	}

	// An empty query browses the collection in sequence order regardless of
	// mode: the neutral lexical clause matches everything at constant score,
	// so a browse never needs the embedding model.
	if req.Query() == "" {
		p.Lexical = &engine.LexicalClause{Fields: weightedFields(c.weights)}
		return p, nil
	}

	if mode.NeedsSemantic() && c.modelID == "" {
		return nil, fmt.Errorf("%w: blend mode %q needs semantic scoring", domain.ErrModelUnavailable, mode)
	}

	if req.From()+req.Size() > c.pool {
		return nil, fmt.Errorf("%w: page [%d, %d) exceeds the candidate pool of %d",
			domain.ErrInvalidQuery, req.From(), req.From()+req.Size(), c.pool)
	}

	if mode.NeedsKeyword() {
		fields := weightedFields(c.weights)
		if !anyPositive(fields) {
			return nil, fmt.Errorf("%w: no field has a positive weight", domain.ErrInvalidQuery)
		}
		p.Lexical = &engine.LexicalClause{
			Terms:  c.norm.Normalize(req.Query()),
			Fields: fields,
		}
	}

	if mode.NeedsSemantic() {
		p.Semantic = &engine.VectorClause{
			Field:     c.vectorField,
			Model:     c.modelID,
			QueryText: req.Query(),
			K:         c.pool,
		}
	}

	return p, nil
}

// Search assembles the plan, dispatches it, blends the response, and maps one
// result page. Dispatch failures surface unmodified; no retries.
func (c *Composer) Search(ctx context.Context, req *request.Request) (*Page, error) {
	p, err := c.BuildPlan(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.engine.Dispatch(ctx, p)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	if req.Debug() {
		page.Plan = p
	}

	if p.IsBrowse() {
		// Engine paginated and ordered by sequence already.
		page.Records = c.mapBrowse(resp.Lexical)
		page.Total = resp.Total
		return page, nil
	}

	cands := c.blendResponse(blend.Mode(p.Blend.Mode), resp, p)
	sortCandidates(cands)
	page.Total = len(cands)
	page.Records = c.mapCandidates(paginate(cands, req.From(), req.Size()))

	c.logger.Debug("search composed",
		zap.String("mode", p.Blend.Mode),
		zap.Int("candidates", page.Total),
		zap.Int("returned", len(page.Records)),
	)
	return page, nil
}

// resolveBlend applies a per-request mode override to the configured policy.
func (c *Composer) resolveBlend(override blend.Mode) (blend.Mode, blend.Config, error) {
	if override == "" || override == c.blend.Mode() {
		return c.blend.Mode(), c.blend, nil
	}
	bcfg, err := c.blend.WithMode(override)
	if err != nil {
		// Construction-valid weights can still be rejected by the override
		// mode, e.g. weighted_hybrid with zero weights.
		return "", blend.Config{}, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	return override, bcfg, nil
}

// blendResponse combines per-signal candidate lists under the active mode.
func (c *Composer) blendResponse(mode blend.Mode, resp *engine.Response, p *engine.Plan) []candidate {
	switch mode {
	case blend.KeywordOnly:
		return singleSignal(resp.Lexical, signalKeyword)
	case blend.SemanticOnly:
		return singleSignal(resp.Semantic, signalSemantic)
	case blend.RankFusion:
		return fuseRRF(resp.Lexical, resp.Semantic)
	default: // weighted_hybrid
		return fuseWeighted(resp.Lexical, resp.Semantic,
			p.Blend.KeywordWeight, p.Blend.SemanticWeight,
			blend.Normalization(p.Blend.Normalization))
	}
}

func filterClauses(conds []filter.Condition) []engine.FilterClause {
	if len(conds) == 0 {
		return nil
	}
	out := make([]engine.FilterClause, 0, len(conds))
	for _, cond := range conds {
		fc := engine.FilterClause{Field: cond.Field()}
		if cond.IsMembership() {
			fc.AnyOf = cond.AnyOf()
		} else if r := cond.Range(); r != nil {
			fc.Min = r.Min()
			fc.Max = r.Max()
		}
		out = append(out, fc)
	}
	return out
}

func weightedFields(w domain.FieldWeights) []engine.WeightedField {
	sorted := w.Sorted()
	out := make([]engine.WeightedField, len(sorted))
	for i, f := range sorted {
		out[i] = engine.WeightedField{Name: f.Name, Weight: f.Weight}
	}
	return out
}

func anyPositive(fields []engine.WeightedField) bool {
	for _, f := range fields {
		if f.Weight > 0 {
			return true
		}
	}
	return false
}

// returnFields lists the stored fields requested with each hit, in schema
// declaration order for plan determinism.
func returnFields(s domain.Schema) []string {
	fields := s.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func paginate(cands []candidate, from, size int) []candidate {
	if from >= len(cands) {
		return nil
	}
	end := from + size
	if end > len(cands) {
		end = len(cands)
	}
	return cands[from:end]
}
