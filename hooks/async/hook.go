// Package asynchook decouples hook delivery from the caller: events are
// queued and delivered by worker goroutines, so a slow hook implementation
// (e.g. one that writes to a remote sink) cannot stall collection reads.
// When the queue is full, events are dropped rather than blocking.
package asynchook

import (
	"sync"

	cork "github.com/cameronfrazier/bottle-cork"
)

type Hooks struct {
	inner cork.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ cork.Hooks = (*Hooks)(nil)

func New(inner cork.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events enqueued after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() { close(h.q) })
	h.wg.Wait()
}

func (h *Hooks) enqueue(f func()) {
	defer func() { _ = recover() }() // enqueue after Close: drop
	select {
	case h.q <- f:
	default: // queue full: drop
	}
}

func (h *Hooks) CacheBypass(storageKey, op string, err error) {
	h.enqueue(func() { h.inner.CacheBypass(storageKey, op, err) })
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	h.enqueue(func() { h.inner.SelfHeal(storageKey, reason) })
}

func (h *Hooks) SetRejected(storageKey string) {
	h.enqueue(func() { h.inner.SetRejected(storageKey) })
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	h.enqueue(func() { h.inner.GenSnapshotError(storageKey, err) })
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	h.enqueue(func() { h.inner.GenBumpError(storageKey, err) })
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	h.enqueue(func() { h.inner.InvalidateOutage(key, bumpErr, delErr) })
}
