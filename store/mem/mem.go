// Package mem provides an in-memory store.Store with the same observable
// semantics as the MongoDB implementation. It backs tests and cache-less
// development setups; it is safe for concurrent use.
package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/cameronfrazier/bottle-cork/store"
)

type Store struct {
	mu    sync.RWMutex
	colls map[string]*Collection
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{colls: make(map[string]*Collection)}
}

func (s *Store) Collection(name string) store.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[name]
	if !ok {
		c = &Collection{}
		s.colls[name] = c
	}
	return c
}

func (s *Store) Close(context.Context) error { return nil }

// Collection keeps documents in insertion order so scans are deterministic.
type Collection struct {
	mu   sync.RWMutex
	docs []store.Record
}

var _ store.Collection = (*Collection)(nil)

func (c *Collection) FindOne(_ context.Context, field string, value any) (store.Record, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if d[field] == value {
			return clone(d), true, nil
		}
	}
	return nil, false, nil
}

func (c *Collection) Find(context.Context) (store.Cursor, error) {
	c.mu.RLock()
	snap := make([]store.Record, len(c.docs))
	for i, d := range c.docs {
		snap[i] = clone(d)
	}
	c.mu.RUnlock()
	return &cursor{docs: snap}, nil
}

func (c *Collection) Count(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (c *Collection) Upsert(_ context.Context, field string, value any, doc store.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if d[field] == value {
			c.docs[i] = clone(doc)
			return nil
		}
	}
	c.docs = append(c.docs, clone(doc))
	return nil
}

func (c *Collection) Delete(_ context.Context, field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if d[field] == value {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

// EnsureUniqueIndex only verifies (or restores) uniqueness; the in-memory
// store has no index structure to build.
func (c *Collection) EnsureUniqueIndex(_ context.Context, field string, dropDuplicates bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[any]bool, len(c.docs))
	kept := make([]store.Record, 0, len(c.docs))
	for _, d := range c.docs {
		v := d[field]
		if seen[v] {
			if !dropDuplicates {
				return fmt.Errorf("mem: duplicate value %v for indexed field %q", v, field)
			}
			continue
		}
		seen[v] = true
		kept = append(kept, d)
	}
	c.docs = kept
	return nil
}

type cursor struct {
	docs []store.Record
	pos  int
}

func (cu *cursor) Next(context.Context) (store.Record, bool, error) {
	if cu.pos >= len(cu.docs) {
		return nil, false, nil
	}
	d := cu.docs[cu.pos]
	cu.pos++
	return d, true, nil
}

func (cu *cursor) Close(context.Context) error { return nil }

func clone(d store.Record) store.Record {
	out := make(store.Record, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
