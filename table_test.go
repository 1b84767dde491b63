package cork

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cameronfrazier/bottle-cork/store"
	"github.com/cameronfrazier/bottle-cork/store/mem"
)

// newTestBackend builds a backend over the in-memory store, optionally with
// an in-memory cache provider.
func newTestBackend(t *testing.T, cached bool) (*Backend, *memProvider) {
	t.Helper()
	opts := Options{Store: mem.New()}
	var p *memProvider
	if cached {
		p = newMemProvider()
		opts.Cache = p
	}
	b, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b, p
}

func TestRolesScenario(t *testing.T) {
	for _, cached := range []bool{false, true} {
		name := "uncached"
		if cached {
			name = "cached"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b, _ := newTestBackend(t, cached)

			if _, err := b.Roles.Get(ctx, "admin"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty roles: want ErrNotFound, got %v", err)
			}
			if ok, err := b.Roles.Contains(ctx, "admin"); err != nil || ok {
				t.Fatalf("Contains on empty roles: ok=%v err=%v", ok, err)
			}

			if err := b.Roles.Set(ctx, "admin", "full_access"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, err := b.Roles.Get(ctx, "admin")
			if err != nil || v != "full_access" {
				t.Fatalf("Get: v=%v err=%v", v, err)
			}
			// Second Get may be served from cache; value extraction is the same.
			v, err = b.Roles.Get(ctx, "admin")
			if err != nil || v != "full_access" {
				t.Fatalf("repeated Get: v=%v err=%v", v, err)
			}

			// Overwrite wholesale.
			if err := b.Roles.Set(ctx, "admin", "read_only"); err != nil {
				t.Fatalf("overwrite Set: %v", err)
			}
			if v, _ = b.Roles.Get(ctx, "admin"); v != "read_only" {
				t.Fatalf("Get after overwrite: %v", v)
			}

			removed, err := b.Roles.Remove(ctx, "admin")
			if err != nil || removed != "read_only" {
				t.Fatalf("Remove: v=%v err=%v", removed, err)
			}
			if ok, _ := b.Roles.Contains(ctx, "admin"); ok {
				t.Fatal("Contains after Remove must be false")
			}
			if _, err := b.Roles.Remove(ctx, "admin"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second Remove: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestValueTableRejectsMappings(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, false)

	err := b.Roles.Set(ctx, "admin", map[string]any{"perm": "all"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	err = b.Roles.Set(ctx, "admin", store.Record{"perm": "all"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for Record value, got %v", err)
	}
	// Rejected writes must not create the key.
	if ok, _ := b.Roles.Contains(ctx, "admin"); ok {
		t.Fatal("rejected Set must not store anything")
	}
}

func TestUsersScenario(t *testing.T) {
	for _, cached := range []bool{false, true} {
		name := "uncached"
		if cached {
			name = "cached"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b, _ := newTestBackend(t, cached)

			rec := store.Record{"login": "alice", "email": "a@x.com"}
			if err := b.Users.Set(ctx, "alice", rec); err != nil {
				t.Fatalf("Set: %v", err)
			}

			u, err := b.Users.Get(ctx, "alice")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			want := store.Record{"login": "alice", "email": "a@x.com"}
			if got := u.Fields(); !reflect.DeepEqual(got, want) {
				t.Fatalf("round trip mismatch: got %v want %v", got, want)
			}

			// Field mutation persists and a fresh read observes it.
			if err := u.SetField(ctx, "email", "b@x.com"); err != nil {
				t.Fatalf("SetField: %v", err)
			}
			u2, err := b.Users.Get(ctx, "alice")
			if err != nil {
				t.Fatalf("Get after SetField: %v", err)
			}
			if v, _ := u2.Get("email"); v != "b@x.com" {
				t.Fatalf("email after SetField: %v", v)
			}

			// Remove returns the last-stored record.
			removed, err := b.Users.Remove(ctx, "alice")
			if err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if removed["email"] != "b@x.com" || removed["login"] != "alice" {
				t.Fatalf("Remove returned %v", removed)
			}
			if ok, _ := b.Users.Contains(ctx, "alice"); ok {
				t.Fatal("Contains after Remove must be false")
			}
			if _, err := b.Users.Remove(ctx, "alice"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second Remove: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRecordTableWriteInvalidate(t *testing.T) {
	ctx := context.Background()
	b, p := newTestBackend(t, true)

	if err := b.Users.Set(ctx, "alice", store.Record{"email": "a@x.com"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Populate the cache.
	if _, err := b.Users.Get(ctx, "alice"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.len() == 0 {
		t.Fatal("expected the read to populate the cache")
	}

	// A write invalidates; the next read reflects the new value, never the
	// cached pre-write document.
	if err := b.Users.Set(ctx, "alice", store.Record{"email": "new@x.com"}); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	u, err := b.Users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get after Set: %v", err)
	}
	if v, _ := u.Get("email"); v != "new@x.com" {
		t.Fatalf("stale read after invalidation: %v", v)
	}
}

func TestRecordTableEmbeddedKeyChecks(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, false)

	// Embedded key equal to the supplied key is fine.
	if err := b.Users.Set(ctx, "bob", store.Record{"login": "bob", "email": "b@x.com"}); err != nil {
		t.Fatalf("Set with matching embedded key: %v", err)
	}

	// Mismatch is a caller error.
	err := b.Users.Set(ctx, "bob", store.Record{"login": "mallory"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}

	// A nil record is a caller error.
	if err := b.Users.Set(ctx, "bob", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for nil record, got %v", err)
	}

	// The key field is injected into a copy; the caller's map stays clean.
	rec := store.Record{"email": "c@x.com"}
	if err := b.Users.Set(ctx, "carol", rec); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, present := rec["login"]; present {
		t.Fatal("Set must not mutate the caller's record")
	}
}

func TestLenKeysItems(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, false)

	users := map[string]string{"alice": "a@x.com", "bob": "b@x.com", "carol": "c@x.com"}
	for login, email := range users {
		if err := b.Users.Set(ctx, login, store.Record{"email": email}); err != nil {
			t.Fatalf("Set %s: %v", login, err)
		}
	}

	if n, err := b.Users.Len(ctx); err != nil || n != 3 {
		t.Fatalf("Len: n=%d err=%v", n, err)
	}

	// Keys: every login exactly once; the scan restarts per call.
	for i := 0; i < 2; i++ {
		it, err := b.Users.Keys(ctx)
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		seen := map[string]bool{}
		for it.Next(ctx) {
			seen[it.Key()] = true
		}
		if err := it.Err(); err != nil {
			t.Fatalf("Keys iteration: %v", err)
		}
		_ = it.Close(ctx)
		if len(seen) != len(users) {
			t.Fatalf("Keys pass %d: got %v", i, seen)
		}
		for login := range users {
			if !seen[login] {
				t.Fatalf("Keys pass %d: missing %q", i, login)
			}
		}
	}

	// Items: records come back without the key field or the store id.
	it, err := b.Users.Items(ctx)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	defer it.Close(ctx)
	count := 0
	for it.Next(ctx) {
		count++
		rec := it.Record()
		if _, present := rec["login"]; present {
			t.Fatalf("Items record for %q retains the key field: %v", it.Key(), rec)
		}
		if _, present := rec["_id"]; present {
			t.Fatalf("Items record for %q retains the store id: %v", it.Key(), rec)
		}
		if rec["email"] != users[it.Key()] {
			t.Fatalf("Items record for %q: %v", it.Key(), rec)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Items iteration: %v", err)
	}
	if count != len(users) {
		t.Fatalf("Items yielded %d records", count)
	}
}

func TestCollectionsDoNotCollideInSharedCache(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, true)

	// The same key in two collections sharing one provider.
	if err := b.Users.Set(ctx, "k", store.Record{"email": "user@x.com"}); err != nil {
		t.Fatalf("users Set: %v", err)
	}
	if err := b.PendingRegistrations.Set(ctx, "k", store.Record{"email": "pending@x.com"}); err != nil {
		t.Fatalf("pending Set: %v", err)
	}

	// Read both twice so the second reads can hit the cache.
	for i := 0; i < 2; i++ {
		u, err := b.Users.Get(ctx, "k")
		if err != nil {
			t.Fatalf("users Get: %v", err)
		}
		if v, _ := u.Get("email"); v != "user@x.com" {
			t.Fatalf("users read %d: %v", i, v)
		}
		p, err := b.PendingRegistrations.Get(ctx, "k")
		if err != nil {
			t.Fatalf("pending Get: %v", err)
		}
		if v, _ := p.Get("email"); v != "pending@x.com" {
			t.Fatalf("pending read %d: %v", i, v)
		}
	}
}

func TestContainsPopulatesCache(t *testing.T) {
	ctx := context.Background()
	b, p := newTestBackend(t, true)

	if err := b.Roles.Set(ctx, "editor", "write_access"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if p.len() != 0 {
		t.Fatal("Set must invalidate, not populate")
	}
	if ok, err := b.Roles.Contains(ctx, "editor"); err != nil || !ok {
		t.Fatalf("Contains: ok=%v err=%v", ok, err)
	}
	if p.len() != 1 {
		t.Fatal("Contains on a store hit must populate the cache with the document")
	}
}
