// Package promise implements the Promise Runtime: one-shot, cancellable
// deferred values bound to a single executor (the Event Manager). It
// mirrors the design in the component specification as closely as Go's
// type system allows; where the original used a variadic C++ template
// pack for `when(...)`, this package provides a small, fixed set of
// arity-specific combinators (When1, When2, When2AndValue, ...) instead —
// Go has no heterogeneous variadic generics, and hand-rolling one via
// reflection would trade compile-time safety for a feature nothing in this
// repository needs beyond arity three.
package promise

import (
	"sync"

	"ekam.build/ekam/internal/engine/eventloop"
)

// Executor is the scheduling capability a Promise is bound to — always the
// Event Manager in practice, injected at construction rather than reached
// for as process-wide state.
type Executor interface {
	RunAsynchronously(cb func()) eventloop.Handle
}

// Promise is a one-shot deferred value of type T, exclusively owned by
// whoever holds it. Calling Cancel before it settles drops the work that
// was going to fulfill it; the Go equivalent of the original's
// drop-to-cancel ownership model.
type Promise[T any] struct {
	exec Executor

	mu          sync.Mutex
	done        bool
	canceled    bool
	value       T
	err         error
	subscribers []func()
	onCancel    func()
}

// New creates an unfulfilled promise bound to exec, together with the
// Fulfiller that may settle it exactly once.
func New[T any](exec Executor) (*Promise[T], Fulfiller[T]) {
	p := &Promise[T]{exec: exec}
	return p, Fulfiller[T]{p: p}
}

// Fulfilled returns an already-settled promise wrapping v — the Go stand-in
// for passing a plain value where the spec's when(...) accepts either a
// promise or a value.
func Fulfilled[T any](exec Executor, v T) *Promise[T] {
	return &Promise[T]{exec: exec, done: true, value: v}
}

// Rejected returns an already-settled promise carrying err.
func Rejected[T any](exec Executor, err error) *Promise[T] {
	return &Promise[T]{exec: exec, done: true, err: err}
}

// Fulfiller grants the exclusive right to settle its promise, exactly
// once, by value, by error, or by chaining an inner promise.
type Fulfiller[T any] struct {
	p *Promise[T]
}

// Fulfill settles the promise with v.
func (f Fulfiller[T]) Fulfill(v T) {
	f.p.settle(v, nil)
}

// Reject settles the promise with a captured exception.
func (f Fulfiller[T]) Reject(err error) {
	var zero T
	f.p.settle(zero, err)
}

// FulfillWith chains an inner promise: the outer promise is not settled
// until inner settles, and adopts its value or error.
func (f Fulfiller[T]) FulfillWith(inner *Promise[T]) {
	inner.subscribe(func() {
		v, err := inner.Get()
		f.p.settle(v, err)
	})
}

func (p *Promise[T]) settle(v T, err error) {
	p.mu.Lock()
	if p.done || p.canceled {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.value = v
	p.err = err
	subs := p.subscribers
	p.subscribers = nil
	p.mu.Unlock()

	for _, sub := range subs {
		p.exec.RunAsynchronously(sub)
	}
}

// subscribe registers cb to be scheduled, via the promise's executor, once
// p settles. If p has already settled, cb is scheduled immediately — still
// on a later turn, never synchronously with the call that settled p. If p
// has been cancelled, cb is dropped: a cancelled promise runs no further
// continuations.
func (p *Promise[T]) subscribe(cb func()) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		p.exec.RunAsynchronously(cb)
		return
	}
	if p.canceled {
		p.mu.Unlock()
		return
	}
	p.subscribers = append(p.subscribers, cb)
	p.mu.Unlock()
}

// setOnCancel installs the hook run when this promise is cancelled before
// settling. Combinators use it to propagate cancellation to their inputs.
func (p *Promise[T]) setOnCancel(onCancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCancel = onCancel
}

// Cancel drops the promise: it will never settle from this call onward,
// no pending continuation of its own will ever run, and any upstream work
// uniquely held for it is released. Idempotent.
func (p *Promise[T]) Cancel() {
	p.mu.Lock()
	if p.done || p.canceled {
		p.mu.Unlock()
		return
	}
	p.canceled = true
	p.subscribers = nil
	onCancel := p.onCancel
	p.mu.Unlock()
	if onCancel != nil {
		onCancel()
	}
}

// Get returns the promise's settled value and error. Only valid once the
// promise has settled — typically called from within a continuation that
// depends on it.
func (p *Promise[T]) Get() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// Settled reports whether the promise has a value or error yet.
func (p *Promise[T]) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Cancelled reports whether Cancel has already been called. A join's fire
// callback checks this on its output promise before invoking a
// continuation, since the turn that runs fire is scheduled the moment an
// input settles and cannot be unscheduled by a later Cancel.
func (p *Promise[T]) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// Result is the variant handed to a when(...) failure continuation for
// each promise-typed argument: either the value the promise settled with,
// or the exception it carried.
type Result[T any] struct {
	Value T
	Err   error
}

// MustGet returns the value, panicking with the captured exception if one
// is present. Mirrors the original's "calling get() on a variant holding
// an exception re-raises it"; most onFailure continuations should inspect
// Err directly instead of relying on this.
func (r Result[T]) MustGet() T {
	if r.Err != nil {
		panic(r.Err)
	}
	return r.Value
}
