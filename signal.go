package fanin

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Signal is a one-shot, monotonic event source - typically a cancellation or
// shutdown notification. Once fired, a Signal stays fired.
//
// Implementations must be safe for concurrent use from any goroutine. [Source] is
// the canonical implementation; [FromContext] adapts a [context.Context].
type Signal interface {
	// Fired reports whether the signal has fired. It never blocks, and once it
	// returns true it returns true forever.
	Fired() bool

	// Register arranges for callback to be invoked exactly once: synchronously,
	// before Register returns, if the signal has already fired; otherwise on
	// whichever goroutine eventually fires it. Multiple callbacks may be
	// registered on the same signal.
	Register(callback func()) Registration
}

// Registration is a live callback subscription on a [Signal].
type Registration interface {
	// Dispose suppresses the callback if it has not been invoked yet. It is
	// idempotent, and a no-op after the callback has run. Disposal that races the
	// firing itself is best-effort: once the firing pass has picked up the
	// callback, Dispose no longer suppresses it (compare [time.Timer.Stop]).
	Dispose()
}

// noopRegistration is handed out when the callback was already invoked during
// Register, so there is nothing left to dispose.
type noopRegistration struct{}

func (noopRegistration) Dispose() {}

// Source is a triggerable one-shot [Signal]. The zero value is ready to use and
// unfired; [Source.Fire] fires it.
type Source struct {
	mu sync.Mutex

	// fired is written exactly once, under mu, but read without it as the
	// Register/Fired fast path.
	fired     atomic.Bool
	callbacks []sourceCallback
	nextID    uint64
}

type sourceCallback struct {
	id uint64
	f  func()
}

// NewSource returns an unfired Source.
func NewSource() *Source {
	return &Source{}
}

// Fired reports whether Fire has been called.
func (s *Source) Fired() bool {
	return s.fired.Load()
}

// Fire fires the signal, invoking every live callback in registration order.
// Calling Fire again is a no-op.
//
// Callbacks run on the calling goroutine, with no internal locks held, so they may
// re-enter the Source - registering on an already-fired Source from inside a
// callback invokes the new callback immediately.
func (s *Source) Fire() {
	s.mu.Lock()
	if !s.fired.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	// fired is now set; no further registrations land in s.callbacks, so this
	// snapshot is complete. Unset the field so it can be collected.
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb.f()
	}
}

// Register implements [Signal]. If the Source has already fired, callback runs
// before Register returns.
func (s *Source) Register(callback func()) Registration {
	if s.fired.Load() {
		callback()
		return noopRegistration{}
	}

	s.mu.Lock()
	// Re-check under the lock: Fire may have snapshotted the callback list between
	// the fast-path load and here, in which case appending would lose the callback.
	if s.fired.Load() {
		s.mu.Unlock()
		callback()
		return noopRegistration{}
	}

	id := s.nextID
	s.nextID += 1
	s.callbacks = append(s.callbacks, sourceCallback{id: id, f: callback})
	s.mu.Unlock()

	return &sourceRegistration{source: s, id: id}
}

type sourceRegistration struct {
	source *Source
	id     uint64
}

func (r *sourceRegistration) Dispose() {
	s := r.source
	s.mu.Lock()
	defer s.mu.Unlock()

	// After firing (or a previous Dispose) the id is simply absent.
	idx := slices.IndexFunc(s.callbacks, func(cb sourceCallback) bool {
		return cb.id == r.id
	})
	if idx != -1 {
		s.callbacks = slices.Delete(s.callbacks, idx, idx+1)
	}
}
