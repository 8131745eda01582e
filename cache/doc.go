// Package cache provides the caching port and the multi-level coordinator the
// data-access layer sits behind.
//
// # Overview
//
// The package exports three pieces:
//
//   - Cache: the port all callers use (get/put/evict/evict-by-pattern/
//     exists/clear). It hides how many tiers sit behind it.
//   - MultiLevel: the coordinator composing a local tier (L1) and a shared
//     tier (L2) behind the Cache port.
//   - KeySerializer: builds stable cache keys from method names and
//     arguments.
//
// Tier adapters live in internal/cacheinfra; repository decorators that
// consume this port live in repositorycache.
//
// # Read and write paths
//
// Reads are read-through: L1 first, then L2. An L2 hit is promoted into L1
// with the remaining TTL of the L2 entry, never the original TTL, so the
// local copy cannot outlive the authoritative record. Writes go to the shared
// tier first, then the local tier, keeping L1 free of values the rest of the
// fleet cannot see.
//
// # Degradation
//
// A tier being unreachable never surfaces as an error through the port. The
// failing tier degrades to a miss (reads) or a no-op (writes), the failure is
// logged, and the remaining tier keeps serving. With every tier down the
// cache behaves as "always miss" and callers fall through to the database.
//
// # Eviction
//
// Evict and EvictPattern clear every tier this process reaches directly. L1
// is in-process: an eviction here does not clear another instance's L1, whose
// stale copy lives until its own TTL expires. Pattern eviction uses
// '*'-wildcard globs with identical semantics in every tier (see Match).
//
// # Typed access
//
// Get[T] is the typed read helper. In-process tiers return live values
// (direct type assertion); the shared tier returns msgpack-encoded []byte
// that the helper decodes.
//
// # Key serialization
//
// The default serializer joins method name and reflected arguments with ':'.
// Function arguments have no value identity: they serialize by pointer, which
// is neither stable across processes nor collision-free, since the allocator
// reuses addresses. Callers caching query results must therefore pass a
// value-based identity for the query (the repository layer renders criteria
// to SQL text for this) and treat the pointer form as a last resort for
// opaque funcs.
package cache
