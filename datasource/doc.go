// Package datasource implements read/write splitting for the persistence
// layer: a per-operation route carried through the context, and a routing
// datasource that resolves the route to one of two pre-constructed connection
// pools.
//
// # Route lifecycle
//
// A route exists only on the context of one logical operation. The routing
// decorator (see repository.Routing) stamps a child context before delegating
// and the stamp dies with the call frame. There is no ambient mutable cell
// to clear, so an error inside the operation cannot leak a route into
// whatever runs next on the same goroutine. A context without a route
// resolves to the primary pool: when ambiguous, prefer freshness over read
// scaling.
//
// # Precedence
//
// ResolveRoute orders the signals a read operation may carry: an explicit
// ForceReplica marker outranks the operation's read-only classification,
// which outranks the primary default. Writes always route primary.
//
// # Pools
//
// The routing table is built once at startup and immutable afterwards.
// Replica pool settings default field-by-field to the primary's, so a
// deployment without a replica routes both values to the same pool. Pool
// failures (exhaustion, connect timeout) propagate to the caller unchanged;
// masking a database outage here would be unsafe.
package datasource
