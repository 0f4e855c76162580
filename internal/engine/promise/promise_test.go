package promise_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/promise"
)

// mockExecutor is a deque-based stand-in for the Event Manager, grounded on
// the original's MockExecutor: RunAsynchronously enqueues, RunNext pops and
// runs exactly one turn.
type mockExecutor struct {
	queue []func()
}

type noopHandle struct{}

func (noopHandle) Cancel() {}

func (m *mockExecutor) RunAsynchronously(cb func()) eventloop.Handle {
	m.queue = append(m.queue, cb)
	return noopHandle{}
}

func (m *mockExecutor) pending() int {
	return len(m.queue)
}

func (m *mockExecutor) runNext() {
	if len(m.queue) == 0 {
		return
	}
	cb := m.queue[0]
	m.queue = m.queue[1:]
	cb()
}

func TestBasic(t *testing.T) {
	exec := &mockExecutor{}
	p, fulfiller := promise.New[int](exec)

	var result int
	out := promise.When1(exec, p, func(x int) int {
		result = x + 118
		return result
	}, nil)
	_ = out

	fulfiller.Fulfill(5)
	assert.Equal(t, 0, result, "continuation must not run before a loop turn")

	exec.runNext()
	assert.Equal(t, 123, result)
}

func TestPreFulfilled(t *testing.T) {
	exec := &mockExecutor{}
	p := promise.Fulfilled(exec, 5)

	var result int
	promise.When1(exec, p, func(x int) int {
		result = x + 118
		return result
	}, nil)

	assert.Equal(t, 0, result)
	exec.runNext()
	assert.Equal(t, 123, result)
}

func TestJoin(t *testing.T) {
	exec := &mockExecutor{}
	p1, f1 := promise.New[int](exec)
	p2, f2 := promise.New[int](exec)

	sum := promise.When2(exec, p1, p2, func(a, b int) int { return a + b }, nil)

	var result int
	promise.When1(exec, sum, func(x int) int {
		result = x
		return x
	}, nil)

	f1.Fulfill(12)
	assert.Equal(t, 0, exec.pending(), "no turn pending until all join inputs arrive")

	f2.Fulfill(34)
	assert.Equal(t, 1, exec.pending(), "exactly one turn pending once both arrive")

	exec.runNext()
	exec.runNext()
	assert.Equal(t, 46, result)
}

func TestChain(t *testing.T) {
	exec := &mockExecutor{}
	p1, f1 := promise.New[int](exec)
	p2, f2 := promise.New[int](exec)

	var result int
	promise.When1(exec, p2, func(i int) int {
		result = i
		return i
	}, nil)

	f2.FulfillWith(p1)
	assert.Equal(t, 0, exec.pending(), "no turn yet: p2 is chained to p1, which hasn't settled")

	f1.Fulfill(123)
	exec.runNext() // p2's FulfillWith subscriber settles p2
	exec.runNext() // When1's continuation over p2
	assert.Equal(t, 123, result)
}

func TestCancel(t *testing.T) {
	exec := &mockExecutor{}
	p, fulfiller := promise.New[int](exec)

	ran := false
	out := promise.When1(exec, p, func(i int) int {
		ran = true
		t.Fatal("cancelled continuation must never run")
		return i
	}, nil)

	fulfiller.Fulfill(5)
	require.Equal(t, 1, exec.pending())

	out.Cancel()

	exec.runNext()
	assert.False(t, ran)
}

func TestExceptionJoin(t *testing.T) {
	exec := &mockExecutor{}
	p1, f1 := promise.New[int](exec)
	p2, f2 := promise.New[int](exec)

	type captured struct {
		r1, r2 promise.Result[int]
		v3     int
	}
	var got captured

	out := promise.When2AndValue(exec, p1, p2, 123,
		func(a, b, v int) int { t.Fatal("onSuccess must not run"); return 0 },
		func(r1, r2 promise.Result[int], v3 int) int {
			got = captured{r1: r1, r2: r2, v3: v3}
			return 0
		},
	)
	_ = out

	boom := errors.New("test")
	f1.Reject(boom)
	f2.Fulfill(456)
	require.Equal(t, 1, exec.pending())

	exec.runNext()

	assert.ErrorIs(t, got.r1.Err, boom)
	assert.Equal(t, 456, got.r2.Value)
	assert.Equal(t, 123, got.v3)
	assert.Panics(t, func() { got.r1.MustGet() })
}

func TestTagConflictIsNotAPromiseConcern(t *testing.T) {
	// The tag-conflict scenario belongs to the tag index / action driver,
	// not the promise runtime; see internal/engine/tagindex
	// (TestIndex_ConflictKeepsFirst) for that property's test.
	t.Skip("covered by internal/engine/tagindex")
}
