/*
Package fanin combines many independent one-shot signals into a single derived
completion event, without polling and without owning any goroutines.

The pieces:

  - [Signal]: the capability contract for a one-shot, monotonic event source -
    query it with Fired, subscribe with Register. [Source] is the triggerable
    implementation; [FromContext] adapts a context.Context.
  - [Completion]: a single-assignment future with an atomic TryComplete and
    channel-based waiting.
  - [Any] and [All]: the two aggregations - first-of-N, resolving to the winning
    Signal, and all-of-N, resolving with no payload once every input has fired.

The load-bearing part of the [Signal] contract is that registering on an
already-fired signal invokes the callback immediately, before Register returns.
That is what makes check-then-register safe: a signal can fire at any moment
between a Fired check and the Register call, and the aggregators rely on the
immediate invocation to close that window rather than trying to avoid it.

Neither aggregation implements timeouts. A caller that cannot wait forever races a
deadline in as one more input:

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	winner, _ := fanin.Any([]fanin.Signal{work, fanin.FromContext(ctx)}).Await(context.Background())

[Any] over an empty slice returns a Completion that never resolves; [All] over an
empty slice returns one that already has. Both are deliberate: "first of nothing"
has no answer, "all of nothing" vacuously does.
*/
package fanin
