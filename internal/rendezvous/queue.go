// Package rendezvous implements a single-slot rendezvous queue: at most
// one value is ever "in flight" between a successful Put and its
// matching Get/Commit. It is built directly on Go's native unbuffered
// channel, which already has rendezvous semantics (a send only
// completes once a receiver is ready) — see DESIGN.md for why this is a
// standard-library-only component rather than a borrowed concurrency
// package. A numeric "-1 = forever" timeout sentinel is replaced with
// context.Context, matching Go convention for an explicit optional
// duration.
package rendezvous

import "context"

// Result is the distinguishable reason code Put and Get return instead
// of throwing.
type Result int

const (
	OK Result = iota
	TimeoutNotDelivered
	TimeoutNotPicked
	TimeoutNothingOffered
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case TimeoutNotDelivered:
		return "timeout-not-delivered"
	case TimeoutNotPicked:
		return "timeout-not-picked"
	case TimeoutNothingOffered:
		return "timeout-nothing-offered"
	default:
		return "unknown"
	}
}

// offering is one value in flight through the queue, paired with a
// dedicated acknowledgement channel. Each Put allocates its own so that
// a producer abandoning a delivery on ctx cancellation can never be
// confused with the ack meant for a different, later Put.
type offering[T any] struct {
	v   T
	ack chan struct{}
}

// Queue is a single-slot rendezvous channel for values of type T.
type Queue[T any] struct {
	ch chan offering[T]
}

// New returns a ready-to-use Queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ch: make(chan offering[T])}
}

// Put offers v to a consumer and blocks until a consumer has picked it up
// (via Get or Acquire/Commit), or ctx is done. It returns OK only once
// delivery is confirmed — never merely once the value has been handed to
// the channel runtime.
func (q *Queue[T]) Put(ctx context.Context, v T) Result {
	o := offering[T]{v: v, ack: make(chan struct{})}
	select {
	case q.ch <- o:
	case <-ctx.Done():
		return TimeoutNotDelivered
	}
	select {
	case <-o.ack:
		return OK
	case <-ctx.Done():
		return TimeoutNotPicked
	}
}

// Get blocks until a value is offered or ctx is done, and returns it.
// Get immediately acknowledges the producer; use Acquire if the consumer
// needs to hold exclusive ownership past that point.
func (q *Queue[T]) Get(ctx context.Context) (T, Result) {
	var zero T
	select {
	case o := <-q.ch:
		close(o.ack)
		return o.v, OK
	case <-ctx.Done():
		return zero, TimeoutNothingOffered
	}
}

// Acquire is like Get, but the returned token must later be passed to
// Commit to acknowledge the producer. This models the stream-buffer use
// case, where the consumer keeps reading from (and may reposition
// within) the buffer after taking ownership, and only releases the
// producer once it is done with that buffer.
func (q *Queue[T]) Acquire(ctx context.Context) (T, *Token, Result) {
	var zero T
	select {
	case o := <-q.ch:
		return o.v, &Token{ack: o.ack}, OK
	case <-ctx.Done():
		return zero, nil, TimeoutNothingOffered
	}
}

// Token is returned by Acquire and consumed exactly once by Commit.
type Token struct {
	ack chan struct{}
}

// Commit releases a value previously obtained via Acquire, unblocking the
// matching Put.
func (t *Token) Commit() {
	if t == nil || t.ack == nil {
		return
	}
	close(t.ack)
	t.ack = nil
}
