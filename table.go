package cork

import (
	"context"
	"fmt"

	"github.com/cameronfrazier/bottle-cork/store"
)

// table is the collection core shared by RecordTable and ValueTable: one
// document collection, key-addressed, with cache population on reads and
// invalidation on writes.
type table struct {
	name     string
	keyField string
	coll     store.Collection
	cache    *sideCache
	log      Logger
}

// Name returns the collection name.
func (t *table) Name() string { return t.name }

// KeyField returns the name of the unique key field.
func (t *table) KeyField() string { return t.keyField }

// Len returns the number of records. It always counts at the store; the
// cache never holds aggregates.
func (t *table) Len(ctx context.Context) (int64, error) {
	return t.coll.Count(ctx)
}

// Contains reports whether key is present. Cache-first; a store hit
// populates the cache with the full document.
func (t *table) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := t.lookup(ctx, key)
	return ok, err
}

// EnsureIndex builds the unique index on the key field. With dropDuplicates
// false (the safe default), existing duplicate keys surface as the store's
// index-build error instead of being destroyed silently.
func (t *table) EnsureIndex(ctx context.Context, dropDuplicates bool) error {
	return t.coll.EnsureUniqueIndex(ctx, t.keyField, dropDuplicates)
}

// Keys starts a new lazy scan over all key values. Each call starts an
// independent scan; the cache is not consulted.
func (t *table) Keys(ctx context.Context) (*KeyIter, error) {
	cur, err := t.coll.Find(ctx)
	if err != nil {
		return nil, err
	}
	return &KeyIter{cur: cur, keyField: t.keyField}, nil
}

// Items starts a new lazy scan yielding (key, record) pairs, with the key
// field and the store's internal id stripped from each record. Used for
// administrative enumeration; the cache is not consulted.
func (t *table) Items(ctx context.Context) (*ItemIter, error) {
	cur, err := t.coll.Find(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemIter{cur: cur, keyField: t.keyField}, nil
}

// lookup is the shared cache-first read: cached document on hit; otherwise a
// store query whose result repopulates the cache under the generation
// observed before the query.
func (t *table) lookup(ctx context.Context, key string) (store.Record, bool, error) {
	if doc, ok := t.cache.get(ctx, key); ok {
		return doc, true, nil
	}
	obs := t.cache.snapshot(ctx, key) // before the store read
	doc, ok, err := t.coll.FindOne(ctx, t.keyField, key)
	if err != nil || !ok {
		return nil, false, err
	}
	t.cache.put(ctx, key, doc, obs)
	return doc, true, nil
}

// deleteKey removes the document and invalidates its cache entry.
func (t *table) deleteKey(ctx context.Context, key string) error {
	if err := t.coll.Delete(ctx, t.keyField, key); err != nil {
		return err
	}
	t.cache.invalidate(ctx, key)
	return nil
}

// KeyIter is a lazy scan over a collection's key values.
type KeyIter struct {
	cur      store.Cursor
	keyField string
	key      string
	err      error
}

// Next advances to the next key. It returns false at the end of the scan or
// on error; check Err afterwards.
func (it *KeyIter) Next(ctx context.Context) bool {
	doc, ok, err := it.cur.Next(ctx)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	it.key = keyString(doc[it.keyField])
	return true
}

// Key returns the key advanced to by the last successful Next.
func (it *KeyIter) Key() string { return it.key }

func (it *KeyIter) Err() error { return it.err }

func (it *KeyIter) Close(ctx context.Context) error { return it.cur.Close(ctx) }

// ItemIter is a lazy scan over (key, record) pairs.
type ItemIter struct {
	cur      store.Cursor
	keyField string
	key      string
	rec      store.Record
	err      error
}

func (it *ItemIter) Next(ctx context.Context) bool {
	doc, ok, err := it.cur.Next(ctx)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	it.key = keyString(doc[it.keyField])
	rec := make(store.Record, len(doc))
	for k, v := range doc {
		if k == it.keyField || k == "_id" {
			continue
		}
		rec[k] = v
	}
	it.rec = rec
	return true
}

func (it *ItemIter) Key() string { return it.key }

// Record returns the record advanced to by the last successful Next, without
// its key field or store id.
func (it *ItemIter) Record() store.Record { return it.rec }

func (it *ItemIter) Err() error { return it.err }

func (it *ItemIter) Close(ctx context.Context) error { return it.cur.Close(ctx) }

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
