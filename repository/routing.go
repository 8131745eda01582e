package repository

import (
	"context"

	"github.com/storekit/datalayer/datasource"
)

// Routing is the routing interceptor: a decorator wrapping every repository
// operation to establish the datasource route before delegating. Reads are
// classified read-only (unless configured otherwise) and resolve through the
// precedence rule: force-replica marker, then read-only flag, then primary.
// Writes are always stamped primary, even when a replica route or marker is
// inherited from an enclosing read.
//
// The decorator is transparent: return values and errors pass through
// untouched, and its only side effect, the route on the child context,
// evaporates when the wrapped call returns.
type Routing[T any] struct {
	base          Repository[T]
	readOnlyReads bool
}

var _ Repository[*struct{}] = (*Routing[*struct{}])(nil)

// RoutingOption configures a Routing decorator.
type RoutingOption[T any] func(*Routing[T])

// WithReadOnlyReads controls whether read operations are declared read-only
// and therefore eligible for the replica. Defaults to true.
func WithReadOnlyReads[T any](readOnly bool) RoutingOption[T] {
	return func(r *Routing[T]) { r.readOnlyReads = readOnly }
}

// NewRouting wraps base with route interception.
func NewRouting[T any](base Repository[T], opts ...RoutingOption[T]) *Routing[T] {
	r := &Routing[T]{base: base, readOnlyReads: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// readCtx stamps the resolved route for a read operation.
func (r *Routing[T]) readCtx(ctx context.Context) context.Context {
	route := datasource.ResolveRoute(datasource.IsForceReplica(ctx), r.readOnlyReads)
	return datasource.WithRoute(ctx, route)
}

// writeCtx stamps the primary route for a write operation.
func (r *Routing[T]) writeCtx(ctx context.Context) context.Context {
	return datasource.WithRoute(ctx, datasource.RoutePrimary)
}

// RenderCriteria forwards to the wrapped repository, keeping query identity
// available through the decorator stack.
func (r *Routing[T]) RenderCriteria(criteria ...SelectCriteria) (string, bool) {
	if renderer, ok := r.base.(CriteriaRenderer); ok {
		return renderer.RenderCriteria(criteria...)
	}
	return "", false
}

// Get delegates with a read route established.
func (r *Routing[T]) Get(ctx context.Context, criteria ...SelectCriteria) (T, error) {
	return r.base.Get(r.readCtx(ctx), criteria...)
}

// GetByID delegates with a read route established.
func (r *Routing[T]) GetByID(ctx context.Context, id string, criteria ...SelectCriteria) (T, error) {
	return r.base.GetByID(r.readCtx(ctx), id, criteria...)
}

// List delegates with a read route established.
func (r *Routing[T]) List(ctx context.Context, criteria ...SelectCriteria) ([]T, int, error) {
	return r.base.List(r.readCtx(ctx), criteria...)
}

// Count delegates with a read route established.
func (r *Routing[T]) Count(ctx context.Context, criteria ...SelectCriteria) (int, error) {
	return r.base.Count(r.readCtx(ctx), criteria...)
}

// Create delegates with the primary route established.
func (r *Routing[T]) Create(ctx context.Context, record T) (T, error) {
	return r.base.Create(r.writeCtx(ctx), record)
}

// Update delegates with the primary route established.
func (r *Routing[T]) Update(ctx context.Context, record T) (T, error) {
	return r.base.Update(r.writeCtx(ctx), record)
}

// Delete delegates with the primary route established.
func (r *Routing[T]) Delete(ctx context.Context, record T) error {
	return r.base.Delete(r.writeCtx(ctx), record)
}
