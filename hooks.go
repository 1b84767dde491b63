package cork

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; the collections call them
// on hot paths. Cache failures never reach callers of collection operations,
// so hooks are the only place they become observable.
type Hooks interface {
	// The provider failed on a read or write; the operation continued as a
	// cache miss. op ∈ {"get", "set", "del"}.
	CacheBypass(storageKey, op string, err error)

	// A cached entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	SetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and provider delete failed during an invalidation
	// (likely cache backend outage). The next read may serve pre-write data
	// until the entry expires.
	InvalidateOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) CacheBypass(string, string, error)     {}
func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) SetRejected(string)                    {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
