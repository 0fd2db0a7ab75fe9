// Package request models a validated user search request.
package request

import (
	"fmt"
	"strings"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/domain/search/filter"
)

// Request parameter limits.
const (
	MaxQueryLength  = 4096
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Limits carries deployment-configured pagination bounds. Zero fields fall
// back to the package defaults.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

func (l Limits) defaultSize() int {
	if l.DefaultSize > 0 {
		return l.DefaultSize
	}
	return DefaultPageSize
}

func (l Limits) maxSize() int {
	if l.MaxSize > 0 {
		return l.MaxSize
	}
	return MaxPageSize
}

// Request is a validated search request. An empty query with no filters is
// well-formed and browses the collection in sequence order.
type Request struct {
	query   string
	mode    blend.Mode // "" means the configured default
	filters []filter.Condition
	from    int
	size    int
	debug   bool
}

// New validates and normalizes request parameters under the package default
// page limits.
func New(
	query string,
	mode blend.Mode,
	filters []filter.Condition,
	from, size int,
	debug bool,
) (Request, error) {
	return NewBounded(query, mode, filters, from, size, debug, Limits{})
}

// NewBounded is New with deployment-configured page limits applied: an absent
// size takes the configured default, an oversized one is clamped to the
// configured maximum.
func NewBounded(
	query string,
	mode blend.Mode,
	filters []filter.Condition,
	from, size int,
	debug bool,
	lim Limits,
) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if mode != "" && !mode.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown blend mode %q", domain.ErrInvalidQuery, mode)
	}
	if from < 0 {
		return Request{}, fmt.Errorf("%w: from must be non-negative", domain.ErrInvalidQuery)
	}
	if size <= 0 {
		size = lim.defaultSize()
	}
	if max := lim.maxSize(); size > max {
		size = max
	}
	return Request{
		query:   query,
		mode:    mode,
		filters: filters,
		from:    from,
		size:    size,
		debug:   debug,
	}, nil
}

// Query returns the raw query text, possibly empty.
func (r *Request) Query() string { return r.query }

// Mode returns the per-request blend mode override, "" for the default.
func (r *Request) Mode() blend.Mode { return r.mode }

// Filters returns the metadata filter predicates.
func (r *Request) Filters() []filter.Condition { return r.filters }

// From returns the pagination offset.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// Debug reports whether the assembled composite query should be exposed.
func (r *Request) Debug() bool { return r.debug }
