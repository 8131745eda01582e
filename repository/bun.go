package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/storekit/datalayer/datasource"
)

// Bun is the generic bun-backed repository. It holds no database handle of
// its own: every operation resolves its pool through the router at call
// time, which is what lets the routing decorator redirect reads to the
// replica without this code knowing.
type Bun[T any] struct {
	router   *datasource.Router
	handlers ModelHandlers[T]
}

var _ Repository[*struct{}] = (*Bun[*struct{}])(nil)

// NewBun builds a repository for one entity type on top of the router.
func NewBun[T any](router *datasource.Router, handlers ModelHandlers[T]) (*Bun[T], error) {
	if router == nil {
		return nil, errors.New("repository: router is required")
	}
	if err := handlers.validate(); err != nil {
		return nil, err
	}
	return &Bun[T]{router: router, handlers: handlers}, nil
}

// Get returns the first record matching the criteria.
func (r *Bun[T]) Get(ctx context.Context, criteria ...SelectCriteria) (T, error) {
	record := r.handlers.NewRecord()
	q := r.router.DB(ctx).NewSelect().Model(record)
	for _, c := range criteria {
		q = c(q)
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return record, nil
}

// GetByID returns the record with the given identifier.
func (r *Bun[T]) GetByID(ctx context.Context, id string, criteria ...SelectCriteria) (T, error) {
	criteria = append(criteria, Where("id = ?", id))
	return r.Get(ctx, criteria...)
}

// List returns the records matching the criteria along with the total count
// the criteria select before limit/offset.
func (r *Bun[T]) List(ctx context.Context, criteria ...SelectCriteria) ([]T, int, error) {
	var records []T
	q := r.router.DB(ctx).NewSelect().Model(&records)
	for _, c := range criteria {
		q = c(q)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Count returns the number of records matching the criteria.
func (r *Bun[T]) Count(ctx context.Context, criteria ...SelectCriteria) (int, error) {
	q := r.router.DB(ctx).NewSelect().Model(r.handlers.NewRecord())
	for _, c := range criteria {
		q = c(q)
	}
	return q.Count(ctx)
}

// Create inserts the record, assigning a UUID when the entity arrives
// without one and a SetID handler is configured.
func (r *Bun[T]) Create(ctx context.Context, record T) (T, error) {
	if r.handlers.GetID(record) == "" && r.handlers.SetID != nil {
		r.handlers.SetID(record, uuid.NewString())
	}
	if _, err := r.router.DB(ctx).NewInsert().Model(record).Exec(ctx); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// Update rewrites the record identified by its primary key.
func (r *Bun[T]) Update(ctx context.Context, record T) (T, error) {
	res, err := r.router.DB(ctx).NewUpdate().Model(record).WherePK().Exec(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return record, nil
}

// Delete removes the record identified by its primary key.
func (r *Bun[T]) Delete(ctx context.Context, record T) error {
	_, err := r.router.DB(ctx).NewDelete().Model(record).WherePK().Exec(ctx)
	return err
}

// RenderCriteria renders the criteria set into the SELECT text it would
// execute, using the primary pool's dialect. Nothing is executed; the text
// only serves as a value-based identity for the logical query.
func (r *Bun[T]) RenderCriteria(criteria ...SelectCriteria) (string, bool) {
	db := r.router.Primary()
	q := db.NewSelect().Model(r.handlers.NewRecord())
	for _, c := range criteria {
		q = c(q)
	}
	sqlText, err := q.AppendQuery(db.Formatter(), nil)
	if err != nil {
		return "", false
	}
	return string(sqlText), true
}

// Handlers exposes the entity hooks, letting decorators reuse them.
func (r *Bun[T]) Handlers() ModelHandlers[T] {
	return r.handlers
}

// DB resolves the pool the next operation under ctx would use. Exposed for
// callers that need raw bun access (migrations, schema setup in tests).
func (r *Bun[T]) DB(ctx context.Context) *bun.DB {
	return r.router.DB(ctx)
}
