package cork

import (
	"context"
	"reflect"

	"github.com/cameronfrazier/bottle-cork/store"
)

// valueField is the document field a ValueTable keeps its scalar under.
const valueField = "val"

// ValueTable stores one opaque value per key (key -> scalar/blob), e.g. a
// role name mapped to its permission set. Values are persisted as
// {<keyField>: key, "val": value}.
type ValueTable struct {
	table
}

func newValueTable(core table) *ValueTable {
	return &ValueTable{table: core}
}

// Get returns the value stored under key, or a NotFoundError when the key is
// absent. Cache-first; the cached object is the full document and the value
// is extracted on every hit.
func (t *ValueTable) Get(ctx context.Context, key string) (any, error) {
	doc, ok, err := t.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Collection: t.name, Key: key}
	}
	return doc[valueField], nil
}

// Set stores value under key, replacing any previous value. Mapping values
// are rejected: composite records belong in a RecordTable. The cached entry
// is invalidated, not updated.
func (t *ValueTable) Set(ctx context.Context, key string, value any) error {
	if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
		return &ArgumentError{
			Collection: t.name,
			Reason:     "mapping values are not allowed; use a record table",
		}
	}
	doc := store.Record{t.keyField: key, valueField: value}
	if err := t.coll.Upsert(ctx, t.keyField, key, doc); err != nil {
		return err
	}
	t.cache.invalidate(ctx, key)
	return nil
}

// Remove deletes the value stored under key and returns it. Absent keys fail
// with a NotFoundError and leave the collection untouched.
func (t *ValueTable) Remove(ctx context.Context, key string) (any, error) {
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
	return doc[valueField], nil
}
