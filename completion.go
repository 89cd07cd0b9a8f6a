package fanin

import (
	"context"
	"sync/atomic"
	"time"
)

// alwaysClosed backs completions that are resolved at construction, so Done never
// needs to allocate for them.
var alwaysClosed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Completion is a single-assignment future: it transitions from pending to completed
// at most once, no matter how many goroutines race to complete it, and holds the
// value it was completed with forever after.
//
// A Completion has no failure or cancellation state. If the signals feeding it never
// fire, it never resolves; bounding the wait is the consumer's job, via the context
// passed to [Completion.Await] (or [Completion.AwaitTimeout]).
type Completion[T any] struct {
	// won guards the pending→completed transition. The value write and close(done)
	// happen after the winning CAS, so readers must observe completion through the
	// done channel, never through won alone.
	won   atomic.Bool
	value T
	done  chan struct{}
}

// NewCompletion returns a pending Completion.
func NewCompletion[T any]() *Completion[T] {
	return &Completion[T]{done: make(chan struct{})}
}

// newCompleted returns a Completion that is already resolved with value.
func newCompleted[T any](value T) *Completion[T] {
	c := &Completion[T]{value: value, done: alwaysClosed}
	c.won.Store(true)
	return c
}

// TryComplete resolves the Completion with value if it is still pending, and reports
// whether this call performed the transition. All later calls - concurrent or not -
// return false and leave the stored value untouched.
func (c *Completion[T]) TryComplete(value T) bool {
	if !c.won.CompareAndSwap(false, true) {
		return false
	}
	c.value = value
	close(c.done)
	return true
}

// Done returns a channel that is closed once the Completion resolves, so it can be
// selected over alongside other events.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Completed reports whether the Completion has resolved, i.e. whether awaiting it
// would return immediately.
func (c *Completion[T]) Completed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Value returns the stored value and true if the Completion has resolved, or the
// zero value and false if it is still pending.
func (c *Completion[T]) Value() (T, bool) {
	if c.Completed() {
		return c.value, true
	}
	var zero T
	return zero, false
}

// Await blocks until the Completion resolves, returning its value, or until ctx is
// done, returning ctx.Err().
//
// If the Completion is already resolved when Await is called, its value is returned
// even if ctx is also done.
func (c *Completion[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, nil
	default:
		select {
		case <-c.done:
			return c.value, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// AwaitTimeout blocks for at most timeout, returning the value and true if the
// Completion resolved in time, or the zero value and false otherwise.
func (c *Completion[T]) AwaitTimeout(timeout time.Duration) (T, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		return c.value, true
	case <-timer.C:
		var zero T
		return zero, false
	}
}
