// Package httpapi exposes the search service over HTTP with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scriptorium-dev/quire/internal/composer"
	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/domain/search/filter"
	"github.com/scriptorium-dev/quire/internal/domain/search/request"
	"github.com/scriptorium-dev/quire/internal/domain/search/result"
	"github.com/scriptorium-dev/quire/internal/metrics"
)

// HealthCheck is a named readiness probe run by GET /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server handles the search API routes.
type Server struct {
	search      *composer.Composer
	defaultMode blend.Mode
	limits      request.Limits
	checks      []HealthCheck
	logger      *zap.Logger
}

// NewServer creates an HTTP API server around a composer.
func NewServer(search *composer.Composer, defaultMode blend.Mode, logger *zap.Logger) *Server {
	return &Server{
		search:      search,
		defaultMode: defaultMode,
		logger:      logger,
	}
}

// WithPageLimits sets the configured default and maximum page sizes applied
// to incoming requests.
func (s *Server) WithPageLimits(defaultSize, maxSize int) *Server {
	s.limits = request.Limits{DefaultSize: defaultSize, MaxSize: maxSize}
	return s
}

// WithHealthCheck registers a readiness probe, in registration order.
func (s *Server) WithHealthCheck(name string, check func(ctx context.Context) error) *Server {
	s.checks = append(s.checks, HealthCheck{Name: name, Check: check})
	return s
}

// Routes mounts the API routes on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// searchRequest is the POST /api/v1/search body.
type searchRequest struct {
	Query   string         `json:"query"`
	Mode    string         `json:"mode,omitempty"`
	Filters *searchFilters `json:"filters,omitempty"`
	From    int            `json:"from,omitempty"`
	Size    int            `json:"size,omitempty"`
	Debug   bool           `json:"debug,omitempty"`
}

// searchFilters carries the metadata predicates: tag membership per field and
// an optional sequence range.
type searchFilters struct {
	Author  []string    `json:"author,omitempty"`
	Volume  []string    `json:"volume,omitempty"`
	Section []string    `json:"section,omitempty"`
	Chapter []string    `json:"chapter,omitempty"`
	Order   *orderRange `json:"order,omitempty"`
}

type orderRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// searchResponse is the POST /api/v1/search reply.
type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
	From  int                `json:"from"`
	Size  int                `json:"size"`
	Plan  json.RawMessage    `json:"plan,omitempty"`
}

type searchResultItem struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	KeywordScore  *float64          `json:"keyword_score,omitempty"`
	SemanticScore *float64          `json:"semantic_score,omitempty"`
	Order         float64           `json:"order"`
	Fields        map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	conds, err := filterConditions(req.Filters)
	if err != nil {
		s.observe(req.Mode, "invalid")
		s.handleDomainError(w, err)
		return
	}

	sreq, err := request.NewBounded(req.Query, blend.Mode(req.Mode), conds, req.From, req.Size, req.Debug, s.limits)
	if err != nil {
		s.observe(req.Mode, "invalid")
		s.handleDomainError(w, err)
		return
	}

	mode := s.modeLabel(sreq.Mode())
	start := time.Now()
	page, err := s.search.Search(r.Context(), &sreq)
	if err != nil {
		s.observe(req.Mode, "error")
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues(mode, "success").Inc()
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.SearchCandidatesBlended.WithLabelValues(mode).Observe(float64(page.Total))

	resp := searchResponse{
		Items: make([]searchResultItem, len(page.Records)),
		Total: page.Total,
		From:  sreq.From(),
		Size:  sreq.Size(),
	}
	for i := range page.Records {
		resp.Items[i] = resultToItem(&page.Records[i])
	}
	if page.Plan != nil {
		resp.Plan = json.RawMessage(page.Plan.Render())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.checks))
	status := http.StatusOK
	for _, c := range s.checks {
		if err := c.Check(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.String("check", c.Name), zap.Error(err))
			checks[c.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[c.Name] = "up"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}

// modeLabel resolves the metrics label: the override when given, the
// configured default otherwise. Unknown overrides collapse to one label so
// request input cannot mint new series.
func (s *Server) modeLabel(override blend.Mode) string {
	switch {
	case override == "":
		return string(s.defaultMode)
	case override.IsValid():
		return string(override)
	default:
		return "unknown"
	}
}

func (s *Server) observe(mode, status string) {
	metrics.SearchRequestsTotal.WithLabelValues(s.modeLabel(blend.Mode(mode)), status).Inc()
}

func filterConditions(f *searchFilters) ([]filter.Condition, error) {
	if f == nil {
		return nil, nil
	}

	var conds []filter.Condition
	tagSets := []struct {
		field  string
		values []string
	}{
		{"author", f.Author},
		{"volume", f.Volume},
		{"section", f.Section},
		{"chapter", f.Chapter},
	}
	for _, ts := range tagSets {
		if len(ts.values) == 0 {
			continue
		}
		cond, err := filter.NewAnyOf(ts.field, ts.values...)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	if f.Order != nil {
		cond, err := filter.NewRange(domain.OrderField, f.Order.Min, f.Order.Max)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	return conds, nil
}

func resultToItem(rec *result.Record) searchResultItem {
	item := searchResultItem{
		ID:     rec.ID(),
		Score:  rec.Score(),
		Order:  rec.Order(),
		Fields: rec.Fields(),
	}
	if v, ok := rec.KeywordScore(); ok {
		item.KeywordScore = &v
	}
	if v, ok := rec.SemanticScore(); ok {
		item.SemanticScore = &v
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidFilter,
		domain.ErrModelUnavailable,
		domain.ErrEngineDispatch,
		domain.ErrConfiguration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", msg)
	case errors.Is(err, domain.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "invalid_filter", msg)
	case errors.Is(err, domain.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", msg)
	case errors.Is(err, domain.ErrEngineDispatch):
		writeError(w, http.StatusBadGateway, "engine_dispatch", msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
