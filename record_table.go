package cork

import (
	"context"
	"fmt"

	"github.com/cameronfrazier/bottle-cork/store"
)

// RecordTable stores an arbitrary field set per key (key -> record), e.g. a
// login name mapped to a user profile.
type RecordTable struct {
	table
}

func newRecordTable(core table) *RecordTable {
	return &RecordTable{table: core}
}

// Get returns a live view of the record stored under key, or a NotFoundError
// when the key is absent. Cache-first; a store hit repopulates the cache.
func (t *RecordTable) Get(ctx context.Context, key string) (*MutableRecord, error) {
	doc, ok, err := t.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Collection: t.name, Key: key}
	}
	return newMutableRecord(t, key, doc), nil
}

// Set replaces the record stored under key wholesale: fields absent from rec
// are dropped, not merged. When rec embeds the key field its value must equal
// key; otherwise the key field is injected into a copy, leaving rec
// unmodified. The cached entry is invalidated, not updated; the next read
// repopulates it from the store.
func (t *RecordTable) Set(ctx context.Context, key string, rec store.Record) error {
	if rec == nil {
		return &ArgumentError{Collection: t.name, Reason: "record must be a non-nil mapping"}
	}
	if v, present := rec[t.keyField]; present && keyString(v) != key {
		return &ArgumentError{
			Collection: t.name,
			Reason:     fmt.Sprintf("embedded key field %q = %v conflicts with key %q", t.keyField, v, key),
		}
	}

	doc := make(store.Record, len(rec)+1)
	for k, v := range rec {
		if k == "_id" {
			continue // the store owns its id
		}
		doc[k] = v
	}
	doc[t.keyField] = key

	if err := t.coll.Upsert(ctx, t.keyField, key, doc); err != nil {
		return err
	}
	t.cache.invalidate(ctx, key)
	return nil
}

// Remove deletes the record stored under key and returns it. Absent keys
// fail with a NotFoundError and leave the collection untouched.
func (t *RecordTable) Remove(ctx context.Context, key string) (store.Record, error) {
	doc, ok, err := t.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Collection: t.name, Key: key}
	}
	if err := t.deleteKey(ctx, key); err != nil {
		return nil, err
	}
	return doc, nil
}
