// Package cork exposes a document database (and an optional side cache) as
// three key-indexed collections used by an authentication subsystem: users,
// pending registrations, and roles.
//
// Components:
//   - store.Store: narrow document-store surface (MongoDB or in-memory).
//   - RecordTable: key -> record collection (users, pending registrations).
//   - ValueTable: key -> opaque scalar collection (roles).
//   - provider.Provider: optional byte cache with TTL (Redis, Ristretto,
//     BigCache). Absent provider means caching is disabled.
//
// Reads are cache-first and populate the cache from the store; writes go to
// the store and invalidate the cached entry (write-invalidate, not
// write-through). Population is guarded by per-key generations:
//
//	obs := gen observed        // before the store read
//	doc := store.FindOne(k)
//	cache.put(k, doc, obs)     // write iff generation unchanged
//
// so an invalidation that lands between the store read and the cache write
// can never be overwritten by stale data. Cache or generation-store failures
// are never surfaced through collection operations; a failing cache is a
// permanent miss.
package cork
