// Package filter models metadata constraints that narrow the candidate set
// without participating in relevance scoring.
package filter

import (
	"fmt"

	"github.com/scriptorium-dev/quire/internal/domain"
)

// Condition is a single filter predicate: tag membership or a numeric range.
type Condition struct {
	field     string
	anyOf     []string
	rangeExpr *Range
}

// NewAnyOf creates a tag membership condition. A single value expresses
// equality.
func NewAnyOf(field string, values ...string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("%w: filter field is required", domain.ErrInvalidFilter)
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("%w: no values for field %q", domain.ErrInvalidFilter, field)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("%w: empty value for field %q", domain.ErrInvalidFilter, field)
		}
	}
	return Condition{field: field, anyOf: values}, nil
}

// NewRange creates a numeric range condition with inclusive bounds.
func NewRange(field string, min, max *float64) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("%w: filter field is required", domain.ErrInvalidFilter)
	}
	if min == nil && max == nil {
		return Condition{}, fmt.Errorf("%w: range on %q needs at least one bound", domain.ErrInvalidFilter, field)
	}
	if min != nil && max != nil && *min > *max {
		return Condition{}, fmt.Errorf("%w: range on %q has min %g > max %g",
			domain.ErrInvalidFilter, field, *min, *max)
	}
	return Condition{field: field, rangeExpr: &Range{min: min, max: max}}, nil
}

// Field returns the metadata field name.
func (c Condition) Field() string { return c.field }

// AnyOf returns the allowed tag values.
func (c Condition) AnyOf() []string { return c.anyOf }

// Range returns the numeric range, nil for membership conditions.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMembership reports whether this is a tag membership condition.
func (c Condition) IsMembership() bool { return len(c.anyOf) > 0 }

// Range is an inclusive numeric interval; a nil bound is unbounded.
type Range struct {
	min *float64
	max *float64
}

// Min returns the inclusive lower bound.
func (r *Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound.
func (r *Range) Max() *float64 { return r.max }

// Validate checks every condition against the schema: membership conditions
// must target tag fields, ranges must target numeric fields.
func Validate(s domain.Schema, conds []Condition) error {
	for _, c := range conds {
		f, ok := s.FieldByName(c.Field())
		if !ok {
			return fmt.Errorf("%w: unknown metadata field %q", domain.ErrInvalidFilter, c.Field())
		}
		if c.IsMembership() && f.Kind != domain.FieldTag {
			return fmt.Errorf("%w: membership filter on non-tag field %q", domain.ErrInvalidFilter, c.Field())
		}
		if c.Range() != nil && f.Kind != domain.FieldNumeric {
			return fmt.Errorf("%w: range filter on non-numeric field %q", domain.ErrInvalidFilter, c.Field())
		}
	}
	return nil
}
