// Package repository defines the persistence contract and its two transparent
// decorators' foundation: a generic bun-backed implementation and the routing
// interceptor. All repositories in this module satisfy Repository[T], so
// callers cannot tell a routed, cached repository from a plain one.
package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a read matches no record.
var ErrNotFound = errors.New("repository: record not found")

// SelectCriteria narrows a read query. Criteria compose left to right.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// CriteriaRenderer is implemented by repositories that can render a criteria
// set into the SQL text it would execute. The rendered text identifies a
// logical query by value: two criteria sets that produce the same SQL are the
// same query, regardless of which closures built them. Cache decorators use
// this as the key segment for criteria-bearing reads.
type CriteriaRenderer interface {
	// RenderCriteria returns the SQL text for the criteria set and true, or
	// "" and false when rendering is not possible.
	RenderCriteria(criteria ...SelectCriteria) (string, bool)
}

// Repository is the persistence contract the infrastructure decorators wrap.
// T is a pointer to an entity struct carrying bun model tags.
type Repository[T any] interface {
	Get(ctx context.Context, criteria ...SelectCriteria) (T, error)
	GetByID(ctx context.Context, id string, criteria ...SelectCriteria) (T, error)
	List(ctx context.Context, criteria ...SelectCriteria) ([]T, int, error)
	Count(ctx context.Context, criteria ...SelectCriteria) (int, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, record T) error
}

// ModelHandlers supplies the per-entity hooks the generic repository needs.
type ModelHandlers[T any] struct {
	// NewRecord allocates an empty record for scanning into. Required.
	NewRecord func() T

	// GetID extracts the record's identifier. Required.
	GetID func(T) string

	// SetID assigns a generated identifier before insert. Optional; when
	// nil, records must arrive with an ID.
	SetID func(T, string)
}

func (h ModelHandlers[T]) validate() error {
	if h.NewRecord == nil {
		return errors.New("repository: ModelHandlers.NewRecord is required")
	}
	if h.GetID == nil {
		return errors.New("repository: ModelHandlers.GetID is required")
	}
	return nil
}

// Where returns a criteria adding a WHERE clause.
func Where(query string, args ...any) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	}
}

// OrderBy returns a criteria adding an ORDER BY clause.
func OrderBy(columns ...string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order(columns...)
	}
}

// Limit returns a criteria bounding the result set.
func Limit(n int) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(n)
	}
}

// Offset returns a criteria skipping the first n rows.
func Offset(n int) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Offset(n)
	}
}
