package cork

import (
	"context"
	"time"

	"github.com/cameronfrazier/bottle-cork/codec"
	"github.com/cameronfrazier/bottle-cork/genstore"
	"github.com/cameronfrazier/bottle-cork/provider"
	"github.com/cameronfrazier/bottle-cork/store"
	storemongo "github.com/cameronfrazier/bottle-cork/store/mongo"
)

// Collection names and key fields are fixed by the authentication subsystem
// this backend serves.
const (
	usersCollection   = "users"
	usersKeyField     = "login"
	pendingCollection = "pending_registrations"
	pendingKeyField   = "pending_registration"
	rolesCollection   = "roles"
	rolesKeyField     = "role"
)

// Options tune the backend. Only the store (or the Mongo config to dial one)
// is required; everything else has defaults, and a nil Cache disables
// caching entirely.
type Options struct {
	// Store is the document store backing all collections. When nil, the
	// backend dials MongoDB itself using Mongo and then owns the connection.
	Store store.Store
	Mongo storemongo.Config

	// Cache is the shared byte store for all collections; nil disables the
	// side cache. CloseCache hands its lifecycle to the backend: set it only
	// if the backend exclusively owns the provider.
	Cache      provider.Provider
	CloseCache bool

	CacheCodec codec.Codec[store.Record] // nil => codec.Msgpack
	CacheTTL   time.Duration             // 0 => 5m
	GenStore   genstore.GenStore         // nil => genstore.NewLocal

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// EnsureIndexes builds the unique key index on all collections at
	// construction. DropDuplicateKeys additionally removes documents with
	// duplicated keys first (keeping one per key) - destructive, off by
	// default; without it an existing duplicate fails index creation loudly.
	EnsureIndexes     bool
	DropDuplicateKeys bool
}

// Backend owns the store connection and exposes the three collections used
// by the authentication subsystem.
type Backend struct {
	Users                *RecordTable
	PendingRegistrations *RecordTable
	Roles                *ValueTable

	st       store.Store
	ownStore bool
	cache    provider.Provider
	ownCache bool
	gen      genstore.GenStore
	ownGen   bool
	log      Logger
}

// New connects the backend. Store connection failures are fatal and satisfy
// errors.Is(err, ErrBackendUnavailable).
func New(ctx context.Context, opts Options) (*Backend, error) {
	log := coalesce[Logger](opts.Logger, NopLogger{})
	hooks := coalesce[Hooks](opts.Hooks, NopHooks{})

	st := opts.Store
	ownStore := false
	if st == nil {
		var err error
		st, err = storemongo.Connect(ctx, opts.Mongo)
		if err != nil {
			return nil, &UnavailableError{Err: err}
		}
		ownStore = true
	}

	b := &Backend{
		st:       st,
		ownStore: ownStore,
		cache:    opts.Cache,
		ownCache: opts.CloseCache,
		log:      log,
	}

	var cd codec.Codec[store.Record]
	ttl := coalesce[time.Duration](opts.CacheTTL, 5*time.Minute)
	if opts.Cache != nil {
		cd = opts.CacheCodec
		if cd == nil {
			cd = codec.Msgpack[store.Record]{}
		}
		b.gen = opts.GenStore
		if b.gen == nil {
			b.gen = genstore.NewLocal(time.Hour, 30*24*time.Hour)
			b.ownGen = true
		}
	}

	newCore := func(name, keyField string) table {
		// cache namespace = collection name ++ key-field name
		sc := newSideCache(name+keyField, opts.Cache, cd, b.gen, ttl, log, hooks)
		return table{
			name:     name,
			keyField: keyField,
			coll:     st.Collection(name),
			cache:    sc,
			log:      log,
		}
	}

	b.Users = newRecordTable(newCore(usersCollection, usersKeyField))
	b.PendingRegistrations = newRecordTable(newCore(pendingCollection, pendingKeyField))
	b.Roles = newValueTable(newCore(rolesCollection, rolesKeyField))

	if opts.EnsureIndexes {
		if err := b.initializeStorage(ctx, opts.DropDuplicateKeys); err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
	}

	return b, nil
}

func (b *Backend) initializeStorage(ctx context.Context, dropDuplicates bool) error {
	type indexed interface {
		EnsureIndex(context.Context, bool) error
	}
	for _, t := range []indexed{b.Users, b.Roles, b.PendingRegistrations} {
		if err := t.EnsureIndex(ctx, dropDuplicates); err != nil {
			return err
		}
	}
	return nil
}

// SaveUsers is a no-op: the store is durable per write. It exists to satisfy
// the uniform backend interface callers expect.
func (b *Backend) SaveUsers() {}

// SaveRoles is a no-op; see SaveUsers.
func (b *Backend) SaveRoles() {}

// SavePendingRegistrations is a no-op; see SaveUsers.
func (b *Backend) SavePendingRegistrations() {}

// Close tears down everything the backend owns: the store connection when it
// dialed one, the generation store when it created one, and the cache
// provider when CloseCache was set.
func (b *Backend) Close(ctx context.Context) error {
	var first error
	if b.gen != nil && b.ownGen {
		if err := b.gen.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	if b.cache != nil && b.ownCache {
		if err := b.cache.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	if b.ownStore {
		if err := b.st.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
