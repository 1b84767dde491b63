package cork

import (
	"context"
	"time"

	"github.com/cameronfrazier/bottle-cork/codec"
	"github.com/cameronfrazier/bottle-cork/genstore"
	"github.com/cameronfrazier/bottle-cork/internal/wire"
	"github.com/cameronfrazier/bottle-cork/provider"
	"github.com/cameronfrazier/bottle-cork/store"
)

// sideCache layers a byte provider in front of one collection. Keys are
// namespaced "doc:<ns>:<key>" where ns is the collection name concatenated
// with its key-field name, so collections sharing one provider cannot
// collide.
//
// Every method tolerates a failing provider or generation store: errors are
// reported through hooks and the logger, and the operation degrades to a
// miss. A nil provider disables the cache entirely.
type sideCache struct {
	ns       string
	provider provider.Provider
	codec    codec.Codec[store.Record]
	gen      genstore.GenStore
	ttl      time.Duration
	log      Logger
	hooks    Hooks
}

func newSideCache(ns string, p provider.Provider, cd codec.Codec[store.Record], gen genstore.GenStore, ttl time.Duration, log Logger, hooks Hooks) *sideCache {
	return &sideCache{
		ns:       ns,
		provider: p,
		codec:    cd,
		gen:      gen,
		ttl:      ttl,
		log:      log,
		hooks:    hooks,
	}
}

func (c *sideCache) enabled() bool { return c != nil && c.provider != nil }

func (c *sideCache) storageKey(key string) string {
	return "doc:" + c.ns + ":" + key
}

// snapshot returns the current generation for key; 0 when the cache is
// disabled or the generation store fails (conservative: population under an
// assumed-stale generation is skipped or self-healed on read).
func (c *sideCache) snapshot(ctx context.Context, key string) uint64 {
	if !c.enabled() {
		return 0
	}
	k := c.storageKey(key)
	g, err := c.gen.Snapshot(ctx, k)
	if err != nil {
		c.hooks.GenSnapshotError(k, err)
		c.log.Warn("gen snapshot error", Fields{"key": k, "err": err})
		return 0
	}
	return g
}

// get returns the cached document for key, or miss. Corrupt, stale or
// undecodable entries are deleted (self-heal) and reported as a miss.
func (c *sideCache) get(ctx context.Context, key string) (store.Record, bool) {
	if !c.enabled() {
		return nil, false
	}
	k := c.storageKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		c.hooks.CacheBypass(k, "get", err)
		c.log.Warn("cache get failed; treating as miss", Fields{"key": k, "err": err})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	gen, payload, err := wire.Decode(raw)
	if err != nil {
		_ = c.provider.Del(ctx, k)
		c.hooks.SelfHeal(k, "corrupt")
		return nil, false
	}
	if gen != c.snapshot(ctx, key) {
		_ = c.provider.Del(ctx, k)
		c.hooks.SelfHeal(k, "gen_mismatch")
		return nil, false
	}
	doc, err := c.codec.Decode(payload)
	if err != nil {
		_ = c.provider.Del(ctx, k)
		c.hooks.SelfHeal(k, "value_decode")
		return nil, false
	}
	return doc, true
}

// put stores doc under key iff the generation is still observedGen. Callers
// must have observed the generation before reading doc from the store.
func (c *sideCache) put(ctx context.Context, key string, doc store.Record, observedGen uint64) {
	if !c.enabled() {
		return
	}
	k := c.storageKey(key)
	if c.snapshot(ctx, key) != observedGen {
		// generation moved; skip stale write
		c.log.Debug("cache put skipped (gen mismatch)", Fields{"key": k, "obs": observedGen})
		return
	}
	payload, err := c.codec.Encode(doc)
	if err != nil {
		c.log.Warn("cache encode failed", Fields{"key": k, "err": err})
		return
	}
	ok, err := c.provider.Set(ctx, k, wire.Encode(observedGen, payload), c.ttl)
	if err != nil {
		c.hooks.CacheBypass(k, "set", err)
		c.log.Warn("cache set failed", Fields{"key": k, "err": err})
		return
	}
	if !ok {
		c.hooks.SetRejected(k)
		c.log.Debug("cache set rejected by provider (pressure)", Fields{"key": k})
	}
}

// invalidate bumps the key's generation and deletes the cached entry. Both
// steps are best-effort; only a double failure risks serving pre-write data
// until the entry expires, and that is surfaced through hooks.
func (c *sideCache) invalidate(ctx context.Context, key string) {
	if !c.enabled() {
		return
	}
	k := c.storageKey(key)
	// The bump runs on a fresh context on purpose: by the time invalidate is
	// called the store write has already happened, and a cancelled caller must
	// not leave the old generation live to serve pre-write data.
	_, bumpErr := c.gen.Bump(context.Background(), k)
	delErr := c.provider.Del(ctx, k)

	switch {
	case bumpErr != nil && delErr != nil:
		c.hooks.InvalidateOutage(k, bumpErr, delErr)
		c.log.Error("cache invalidate failed", Fields{
			"err": &InvalidateError{Key: k, BumpErr: bumpErr, DelErr: delErr},
		})
	case bumpErr != nil:
		c.hooks.GenBumpError(k, bumpErr)
		c.log.Warn("gen bump failed; delete succeeded", Fields{"key": k, "err": bumpErr})
	case delErr != nil:
		// gen bump succeeded, so the surviving entry self-heals on read
		c.hooks.CacheBypass(k, "del", delErr)
		c.log.Warn("cache delete failed; gen bumped", Fields{"key": k, "err": delErr})
	default:
		c.log.Debug("invalidated key (bumped gen + cleared entry)", Fields{"key": k})
	}
}
