package cork

import (
	"context"
	"errors"
	"testing"

	"github.com/cameronfrazier/bottle-cork/store"
)

func TestMutableRecordFieldAccess(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, false)

	_ = b.Users.Set(ctx, "alice", store.Record{"email": "a@x.com"})
	u, err := b.Users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if u.Key() != "alice" {
		t.Fatalf("Key: %q", u.Key())
	}
	if v, ok := u.Get("email"); !ok || v != "a@x.com" {
		t.Fatalf("Get email: v=%v ok=%v", v, ok)
	}
	if _, ok := u.Get("missing"); ok {
		t.Fatal("absent field reported present")
	}

	// Fields returns a copy; mutating it is invisible to the view.
	f := u.Fields()
	f["email"] = "mutated"
	if v, _ := u.Get("email"); v != "a@x.com" {
		t.Fatalf("Fields copy aliased the view: %v", v)
	}
}

func TestMutableRecordSetFieldRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t, false)

	_ = b.Users.Set(ctx, "alice", store.Record{"email": "a@x.com"})
	u, err := b.Users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Rewriting the key field to a different value is a caller error; the
	// in-memory view must stay consistent with the store.
	if err := u.SetField(ctx, "login", "mallory"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if v, _ := u.Get("login"); v != "alice" {
		t.Fatalf("failed SetField leaked into the view: %v", v)
	}

	stored, err := b.Users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, _ := stored.Get("login"); v != "alice" {
		t.Fatalf("failed SetField leaked into the store: %v", v)
	}
}
