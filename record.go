package cork

import (
	"context"

	"github.com/cameronfrazier/bottle-cork/store"
)

// MutableRecord is a live view of one RecordTable record, bound to its owning
// table and key. Reads are in-memory; SetField persists the change.
type MutableRecord struct {
	table *RecordTable
	key   string
	doc   store.Record
}

func newMutableRecord(t *RecordTable, key string, doc store.Record) *MutableRecord {
	return &MutableRecord{table: t, key: key, doc: doc}
}

// Key returns the record's key value.
func (r *MutableRecord) Key() string { return r.key }

// Get returns the named field's value and whether the field is present.
func (r *MutableRecord) Get(field string) (any, bool) {
	v, ok := r.doc[field]
	return v, ok
}

// Fields returns a copy of the record's fields, including the key field but
// without the store's internal id. Mutating the copy does not affect the
// view or the store.
func (r *MutableRecord) Fields() store.Record {
	out := make(store.Record, len(r.doc))
	for k, v := range r.doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

// SetField updates one field and writes the WHOLE record back to the table.
// Every call is a full-document upsert plus a cache invalidation; callers
// changing many fields should build a replacement record and call the
// table's Set once instead.
func (r *MutableRecord) SetField(ctx context.Context, field string, value any) error {
	prev, had := r.doc[field]
	r.doc[field] = value
	if err := r.table.Set(ctx, r.key, r.Fields()); err != nil {
		// keep the in-memory view consistent with the store
		if had {
			r.doc[field] = prev
		} else {
			delete(r.doc, field)
		}
		return err
	}
	return nil
}
