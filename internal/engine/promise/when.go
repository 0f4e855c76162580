package promise

import "sync/atomic"

// join tracks how many of a when(...) call's inputs remain unsettled, and
// runs exactly once, via RunAsynchronously, when the count reaches zero —
// "completion of all inputs triggers scheduling, not immediate invocation,
// of the continuation."
type join struct {
	remaining atomic.Int32
	fire      func()
}

func newJoin(n int, fire func()) *join {
	j := &join{fire: fire}
	j.remaining.Store(int32(n))
	return j
}

func (j *join) arrive() {
	if j.remaining.Add(-1) == 0 {
		j.fire()
	}
}

// When1 subscribes to p1; once it settles, schedules exactly one turn that
// invokes onSuccess if p1 carries a value, or onFailure (if given) if it
// carries an exception. Without onFailure, an exception on p1 propagates
// as the returned promise's exception.
func When1[T1, R any](exec Executor, p1 *Promise[T1], onSuccess func(T1) R, onFailure func(Result[T1]) R) *Promise[R] {
	out, fulfiller := New[R](exec)

	j := newJoin(1, func() {
		if out.Cancelled() {
			return
		}
		v1, err1 := p1.Get()
		if err1 != nil && onFailure == nil {
			fulfiller.Reject(err1)
			return
		}
		if err1 != nil {
			fulfiller.Fulfill(onFailure(Result[T1]{Err: err1}))
			return
		}
		fulfiller.Fulfill(onSuccess(v1))
	})
	p1.subscribe(j.arrive)

	out.setOnCancel(func() { p1.Cancel() })
	return out
}

// When1Chain is When1 for continuations that themselves return a promise:
// the outer promise adopts the inner one's eventual value or exception
// instead of the inner promise itself.
func When1Chain[T1, R any](exec Executor, p1 *Promise[T1], onSuccess func(T1) *Promise[R], onFailure func(Result[T1]) *Promise[R]) *Promise[R] {
	out, fulfiller := New[R](exec)

	j := newJoin(1, func() {
		if out.Cancelled() {
			return
		}
		v1, err1 := p1.Get()
		var inner *Promise[R]
		switch {
		case err1 != nil && onFailure != nil:
			inner = onFailure(Result[T1]{Err: err1})
		case err1 != nil:
			fulfiller.Reject(err1)
			return
		default:
			inner = onSuccess(v1)
		}
		fulfiller.FulfillWith(inner)
	})
	p1.subscribe(j.arrive)

	out.setOnCancel(func() { p1.Cancel() })
	return out
}

// When2 joins p1 and p2. onFailure, if given, receives each input as a
// Result variant; without it, the first exception observed (p1's, then
// p2's) propagates.
func When2[T1, T2, R any](exec Executor, p1 *Promise[T1], p2 *Promise[T2], onSuccess func(T1, T2) R, onFailure func(Result[T1], Result[T2]) R) *Promise[R] {
	out, fulfiller := New[R](exec)

	fire := func() {
		if out.Cancelled() {
			return
		}
		v1, err1 := p1.Get()
		v2, err2 := p2.Get()
		if (err1 != nil || err2 != nil) && onFailure == nil {
			if err1 != nil {
				fulfiller.Reject(err1)
			} else {
				fulfiller.Reject(err2)
			}
			return
		}
		if err1 != nil || err2 != nil {
			fulfiller.Fulfill(onFailure(Result[T1]{Value: v1, Err: err1}, Result[T2]{Value: v2, Err: err2}))
			return
		}
		fulfiller.Fulfill(onSuccess(v1, v2))
	}
	j := newJoin(2, fire)
	p1.subscribe(j.arrive)
	p2.subscribe(j.arrive)

	out.setOnCancel(func() {
		p1.Cancel()
		p2.Cancel()
	})
	return out
}

// When2AndValue joins two promises with a plain value passed through
// unchanged, matching the spec's "a plain value of type U" argument kind —
// it never appears wrapped in a Result, in either continuation.
func When2AndValue[T1, T2, V, R any](exec Executor, p1 *Promise[T1], p2 *Promise[T2], v3 V, onSuccess func(T1, T2, V) R, onFailure func(Result[T1], Result[T2], V) R) *Promise[R] {
	out, fulfiller := New[R](exec)

	fire := func() {
		if out.Cancelled() {
			return
		}
		v1, err1 := p1.Get()
		v2, err2 := p2.Get()
		if (err1 != nil || err2 != nil) && onFailure == nil {
			if err1 != nil {
				fulfiller.Reject(err1)
			} else {
				fulfiller.Reject(err2)
			}
			return
		}
		if err1 != nil || err2 != nil {
			fulfiller.Fulfill(onFailure(Result[T1]{Value: v1, Err: err1}, Result[T2]{Value: v2, Err: err2}, v3))
			return
		}
		fulfiller.Fulfill(onSuccess(v1, v2, v3))
	}
	j := newJoin(2, fire)
	p1.subscribe(j.arrive)
	p2.subscribe(j.arrive)

	out.setOnCancel(func() {
		p1.Cancel()
		p2.Cancel()
	})
	return out
}
