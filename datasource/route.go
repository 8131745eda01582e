package datasource

import "context"

// Route identifies which physical connection pool a logical database
// operation should use.
type Route int

const (
	// RoutePrimary is the writable pool. It is also the default whenever no
	// route has been established: when in doubt, prefer freshness over read
	// scaling.
	RoutePrimary Route = iota

	// RouteReplica is the read-only pool.
	RouteReplica
)

// String implements fmt.Stringer.
func (r Route) String() string {
	switch r {
	case RouteReplica:
		return "replica"
	default:
		return "primary"
	}
}

type routeKey struct{}
type forceReplicaKey struct{}

// WithRoute returns a child context carrying the given route. The route is
// visible only through the returned context: once the operation holding it
// returns, no trace of the route remains on the parent, so a route can never
// leak into an unrelated operation that reuses the same goroutine.
func WithRoute(ctx context.Context, route Route) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext returns the route carried by ctx, defaulting to
// RoutePrimary when none has been set.
func RouteFromContext(ctx context.Context) Route {
	if route, ok := ctx.Value(routeKey{}).(Route); ok {
		return route
	}
	return RoutePrimary
}

// ForceReplica marks the operations under the returned context as explicitly
// replica-bound. The marker outranks any read-only classification (see
// ResolveRoute); write operations ignore it.
func ForceReplica(ctx context.Context) context.Context {
	return context.WithValue(ctx, forceReplicaKey{}, true)
}

// IsForceReplica reports whether ctx carries the force-replica marker.
func IsForceReplica(ctx context.Context) bool {
	forced, ok := ctx.Value(forceReplicaKey{}).(bool)
	return ok && forced
}

// ResolveRoute applies the routing precedence for a read-side operation: an
// explicit force-replica marker wins over the transaction's read-only flag,
// and the read-only flag wins over the default primary.
func ResolveRoute(forceReplica, readOnly bool) Route {
	if forceReplica || readOnly {
		return RouteReplica
	}
	return RoutePrimary
}
