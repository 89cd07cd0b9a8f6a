package fanin

import "context"

// FromContext adapts ctx into a [Signal] that fires when ctx is done. This is the
// usual way to bound an aggregation: race the real signals against a deadline
// context through [Any].
//
// Registration is backed by [context.AfterFunc], so a callback registered before
// the context completes runs on its own goroutine, and Dispose maps onto the stop
// function AfterFunc returns.
func FromContext(ctx context.Context) Signal {
	return ctxSignal{ctx: ctx}
}

type ctxSignal struct {
	ctx context.Context
}

func (s ctxSignal) Fired() bool {
	return s.ctx.Err() != nil
}

func (s ctxSignal) Register(callback func()) Registration {
	if s.ctx.Err() != nil {
		callback()
		return noopRegistration{}
	}
	return stopRegistration(context.AfterFunc(s.ctx, callback))
}

// stopRegistration wraps an AfterFunc stop function. AfterFunc already guarantees
// at-most-once invocation and idempotent stop, so Dispose is a direct call.
type stopRegistration func() bool

func (r stopRegistration) Dispose() {
	r()
}
