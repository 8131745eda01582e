// Package repositorycache decorates a repository with transparent read-through
// caching.
//
// # Overview
//
// Cached wraps any [repository.Repository] and satisfies the same interface,
// so callers cannot tell a cached repository from a direct one:
//
//	base, _ := repository.NewBun[*store.Product](router, handlers)
//	repo := repositorycache.New[*store.Product](
//		repository.NewRouting(base),
//		cacheService,
//		cache.NewDefaultKeySerializer(),
//		repositorycache.WithRecordID[*store.Product](func(p *store.Product) string { return p.ID }),
//	)
//
// # Keys and namespaces
//
// Every key starts with the entity namespace, derived from the type name
// ("Product" becomes "product") unless overridden with WithNamespace. The
// method name and serialized arguments follow. Criteria are closures with no
// value identity, so when the base repository implements
// [repository.CriteriaRenderer] the decorator keys them by the SQL text they
// render to, which two logically identical queries share and two different
// queries never do:
//
//	product:get_by_id:42:nil
//	product:count:SELECT count(*) FROM "products" WHERE (status = 'active')
//
// A base that cannot render falls back to the serializer's address form
// ("func.0x1045c8"), which is collision-prone across allocations and kept
// only as a last resort for opaque bases.
//
// The flat namespace:method:args shape is what makes glob invalidation work:
// a write to products evicts "product:list*" without knowing which list
// queries were ever cached. Invalidation patterns are built from the
// namespace, method, and record ID alone, never from stored keys, so SQL
// text inside a key cannot leak wildcard characters into a pattern.
//
// # Invalidation
//
// Create evicts the query caches (list, count, get); the new record cannot be
// in any get_by_id entry yet. Update and Delete additionally evict the
// record's own get_by_id entries when a WithRecordID extractor is configured;
// without one they clear the whole namespace, trading precision for safety.
//
// # Degradation
//
// Cache failures never surface to the caller. A failed read falls through to
// the base repository, a failed write of a fetched value is dropped, and a
// failed eviction is left to TTL expiry. A fully unavailable cache turns the
// decorator into a pass-through.
package repositorycache
