// Package store defines the narrow document-store surface consumed by the
// cork collections: point lookup by field value, full-overwrite upsert,
// point delete, count, lazy full scans, and unique-index creation.
//
// Implementations MUST treat Upsert as a wholesale document replacement:
// fields absent from the new document are dropped, never merged. A single
// Upsert or Delete must be atomic at the store level; no multi-document
// transaction guarantee is expected or provided.
package store

import "context"

// Record is one stored document: a field-name -> value mapping.
// The reserved field "_id" belongs to the store and is stripped by callers
// during enumeration.
type Record = map[string]any

// Store is a handle to one logical database holding named collections.
type Store interface {
	// Collection returns a handle to the named collection, creating it lazily
	// if the backing store requires that.
	Collection(name string) Collection

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Collection is a named set of documents indexed by a caller-chosen field.
type Collection interface {
	// FindOne returns the first document whose field equals value.
	// Miss is (nil, false, nil); errors are transport/store failures only.
	FindOne(ctx context.Context, field string, value any) (Record, bool, error)

	// Find starts a new full scan. Each call returns an independent cursor
	// positioned before the first document.
	Find(ctx context.Context) (Cursor, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int64, error)

	// Upsert replaces the document whose field equals value with doc,
	// inserting it if absent. Replacement is wholesale, not a field merge.
	Upsert(ctx context.Context, field string, value any, doc Record) error

	// Delete removes the document whose field equals value.
	// Deleting an absent document is not an error.
	Delete(ctx context.Context, field string, value any) error

	// EnsureUniqueIndex builds a unique ascending index on field. When
	// dropDuplicates is true, documents sharing an already-indexed field
	// value are removed first (keeping one per value); when false, an
	// existing duplicate surfaces as the store's index-build error.
	EnsureUniqueIndex(ctx context.Context, field string, dropDuplicates bool) error
}

// Cursor is a lazy scan over a collection. Typical use:
//
//	cur, err := coll.Find(ctx)
//	...
//	defer cur.Close(ctx)
//	for {
//	    doc, ok, err := cur.Next(ctx)
//	    if err != nil || !ok { ... }
//	}
type Cursor interface {
	// Next returns the next document, or (nil, false, nil) when exhausted.
	Next(ctx context.Context) (Record, bool, error)

	// Close releases cursor resources. Safe after exhaustion.
	Close(ctx context.Context) error
}
