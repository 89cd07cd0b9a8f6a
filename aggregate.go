package fanin

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Void is the payload of aggregations that complete without producing a value.
type Void struct{}

// Option configures an aggregation call.
type Option func(*config)

// WithLogger attaches a logger to the aggregation. Registration and resolution are
// recorded at debug level. Without this option, nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

type config struct {
	logger *log.Logger
}

func buildConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c config) debug(msg string, keyvals ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, keyvals...)
	}
}

// Any returns a Completion that resolves to the first of signals to fire.
//
// Every signal is registered on, in input order, but order carries no priority:
// when several signals fire concurrently, which one wins is a race outcome. A
// signal that is already fired when Any is called wins immediately (registration
// on a fired signal invokes the callback synchronously, so there is no window in
// which an already-fired input can be missed).
//
// Once the Completion resolves, the registrations on the losing signals are
// disposed, so a long-lived signal does not keep accumulating dead callbacks from
// aggregations that were decided long ago.
//
// If signals is empty, the returned Completion never resolves; callers that need a
// bound must race an external deadline in, e.g. via [FromContext].
func Any(signals []Signal, opts ...Option) *Completion[Signal] {
	cfg := buildConfig(opts)
	rejectNil(signals)

	c := NewCompletion[Signal]()
	losers := &registrationSet{}
	for _, sig := range signals {
		sig := sig
		reg := sig.Register(func() {
			if c.TryComplete(sig) {
				cfg.debug("fanin: first signal fired", "inputs", len(signals))
				losers.disposeAll()
			}
		})
		losers.add(reg)
	}
	cfg.debug("fanin: any registered", "inputs", len(signals))
	return c
}

// All returns a Completion that resolves, with no payload, once every one of
// signals has fired. Signals that have already fired count as done; in particular,
// an empty input - vacuously all fired - yields an already-resolved Completion.
//
// Completion happens on whichever goroutine fires the last outstanding signal,
// where "last" is a race outcome among concurrently firing signals, not an input
// position.
func All(signals []Signal, opts ...Option) *Completion[Void] {
	cfg := buildConfig(opts)
	rejectNil(signals)

	pending := make([]Signal, 0, len(signals))
	for _, sig := range signals {
		if !sig.Fired() {
			pending = append(pending, sig)
		}
	}
	if len(pending) == 0 {
		cfg.debug("fanin: all inputs already fired", "inputs", len(signals))
		return newCompleted(Void{})
	}

	c := NewCompletion[Void]()

	// Each pending signal owes the counter exactly one decrement: taken inline
	// below if the signal fired since the first pass, or by its callback otherwise
	// (synchronously during Register when it fires in between, asynchronously on
	// the firing goroutine after that). Starting from the full pending count means
	// the counter cannot touch zero until every one of them is accounted for.
	var remaining atomic.Int64
	remaining.Store(int64(len(pending)))

	complete := func() {
		if c.TryComplete(Void{}) {
			cfg.debug("fanin: all signals fired", "inputs", len(signals))
		}
	}

	for _, sig := range pending {
		if sig.Fired() {
			if remaining.Add(-1) == 0 {
				complete()
			}
			continue
		}
		sig.Register(func() {
			if remaining.Add(-1) == 0 {
				complete()
			}
		})
	}
	cfg.debug("fanin: all registered", "inputs", len(signals), "pending", len(pending))
	return c
}

// rejectNil fails fast on nil elements, before any registration has happened.
func rejectNil(signals []Signal) {
	for i, sig := range signals {
		if sig == nil {
			panic(fmt.Sprintf("fanin: nil Signal at index %d", i))
		}
	}
}

// registrationSet collects the registrations made during one aggregation call so
// that, once the call's Completion resolves, the ones that did not contribute can
// be disposed.
type registrationSet struct {
	mu       sync.Mutex
	resolved bool
	regs     []Registration
}

// add records reg, or disposes it on the spot if the aggregation has already
// resolved. The latter happens when an input fires during the registration loop:
// registrations made after that point can never contribute.
func (rs *registrationSet) add(reg Registration) {
	rs.mu.Lock()
	if rs.resolved {
		rs.mu.Unlock()
		reg.Dispose()
		return
	}
	rs.regs = append(rs.regs, reg)
	rs.mu.Unlock()
}

// disposeAll marks the set resolved and disposes everything recorded so far.
// Disposing the winner's own registration is included and harmless: disposal after
// invocation is a no-op.
func (rs *registrationSet) disposeAll() {
	rs.mu.Lock()
	rs.resolved = true
	regs := rs.regs
	rs.regs = nil
	rs.mu.Unlock()

	for _, reg := range regs {
		reg.Dispose()
	}
}
