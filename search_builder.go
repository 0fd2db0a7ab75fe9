package quire

import (
	"context"
	"fmt"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/domain/search/filter"
	"github.com/scriptorium-dev/quire/internal/domain/search/request"
)

// Result is a single ranked hit.
type Result struct {
	ID    string
	Score float64
	// KeywordScore and SemanticScore are nil when the blend mode omitted
	// that signal.
	KeywordScore  *float64
	SemanticScore *float64
	Order         float64
	Fields        map[string]string
}

// Page is one page of ranked results. Plan is the rendered composite query,
// populated only for Debug queries.
type Page struct {
	Items []Result
	Total int
	Plan  []byte
}

// SearchBuilder is a fluent builder for search queries.
type SearchBuilder struct {
	client  *Client
	query   string
	mode    Mode
	filters []filter.Condition
	from    int
	size    int
	debug   bool
	err     error
}

// Query sets the query text. An empty query browses the collection in
// sequence order.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Mode overrides the configured blend mode for this query.
func (b *SearchBuilder) Mode(m Mode) *SearchBuilder {
	b.mode = m
	return b
}

// Where restricts results to documents whose tag field matches any of the
// given values. Repeated calls on different fields conjoin.
func (b *SearchBuilder) Where(field string, values ...string) *SearchBuilder {
	if b.err != nil {
		return b
	}
	cond, err := filter.NewAnyOf(field, values...)
	if err != nil {
		b.err = fmt.Errorf("where %q: %w", field, err)
		return b
	}
	b.filters = append(b.filters, cond)
	return b
}

// OrderBetween restricts results to the inclusive sequence range. Either
// bound may be nil for a half-open range.
func (b *SearchBuilder) OrderBetween(min, max *float64) *SearchBuilder {
	if b.err != nil {
		return b
	}
	cond, err := filter.NewRange(domain.OrderField, min, max)
	if err != nil {
		b.err = fmt.Errorf("order range: %w", err)
		return b
	}
	b.filters = append(b.filters, cond)
	return b
}

// From sets the pagination offset.
func (b *SearchBuilder) From(n int) *SearchBuilder {
	b.from = n
	return b
}

// Size sets the page size.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.size = n
	return b
}

// Debug attaches the assembled composite query to the result page.
func (b *SearchBuilder) Debug() *SearchBuilder {
	b.debug = true
	return b
}

// Do executes the query.
func (b *SearchBuilder) Do(ctx context.Context) (*Page, error) {
	if b.err != nil {
		return nil, b.err
	}

	req, err := request.NewBounded(b.query, blend.Mode(b.mode), b.filters, b.from, b.size, b.debug, b.client.limits)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	page, err := b.client.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &Page{
		Items: make([]Result, len(page.Records)),
		Total: page.Total,
	}
	for i := range page.Records {
		rec := &page.Records[i]
		item := Result{
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
		out.Items[i] = item
	}
	if page.Plan != nil {
		out.Plan = page.Plan.Render()
	}
	return out, nil
}
