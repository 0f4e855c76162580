// Package mux fans a single stream of Dashboard events out to any number
// of wrapped Dashboards, grounded on the original Ekam's MuxDashboard:
// every BeginTask call is forwarded to every dashboard currently attached,
// and every state/output/close call on the returned Task is forwarded to
// that task's own set of wrapped tasks.
package mux

import (
	"sync"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
)

// Dashboard wraps zero or more ports.Dashboard implementations and
// presents them as one.
type Dashboard struct {
	mu      sync.Mutex
	wrapped []ports.Dashboard
	tasks   map[*task]struct{}
}

// New creates a Dashboard forwarding to the given wrapped dashboards.
func New(wrapped ...ports.Dashboard) *Dashboard {
	return &Dashboard{
		wrapped: append([]ports.Dashboard(nil), wrapped...),
		tasks:   make(map[*task]struct{}),
	}
}

// Attach adds dashboard to the wrapped set, immediately opening a wrapped
// task on it for every task already in flight — mirroring the original
// Connector's constructor, which attaches every live TaskImpl.
func (m *Dashboard) Attach(dashboard ports.Dashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wrapped = append(m.wrapped, dashboard)
	for t := range m.tasks {
		t.attach(dashboard)
	}
}

// Detach removes dashboard from the wrapped set. It does not retroactively
// close tasks already opened on it.
func (m *Dashboard) Detach(dashboard ports.Dashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.wrapped {
		if d == dashboard {
			m.wrapped = append(m.wrapped[:i], m.wrapped[i+1:]...)
			break
		}
	}
}

func (m *Dashboard) BeginTask(verb, noun string, silent bool) ports.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &task{mux: m, verb: verb, noun: noun, silent: silent, state: domain.TaskPending, wrapped: make(map[ports.Dashboard]ports.Task)}
	for _, d := range m.wrapped {
		t.wrapped[d] = d.BeginTask(verb, noun, silent)
	}
	m.tasks[t] = struct{}{}
	return t
}

type task struct {
	mux     *Dashboard
	verb    string
	noun    string
	silent  bool
	state   domain.TaskState
	wrapped map[ports.Dashboard]ports.Task
}

func (t *task) attach(dashboard ports.Dashboard) {
	wrapped := dashboard.BeginTask(t.verb, t.noun, t.silent)
	if t.state != domain.TaskPending {
		wrapped.SetState(t.state)
	}
	t.wrapped[dashboard] = wrapped
}

func (t *task) SetState(state domain.TaskState) {
	t.mux.mu.Lock()
	defer t.mux.mu.Unlock()
	t.state = state
	for _, wrapped := range t.wrapped {
		wrapped.SetState(state)
	}
}

func (t *task) AddOutput(text string) {
	t.mux.mu.Lock()
	defer t.mux.mu.Unlock()
	for _, wrapped := range t.wrapped {
		wrapped.AddOutput(text)
	}
}

func (t *task) Close() {
	t.mux.mu.Lock()
	defer t.mux.mu.Unlock()
	for _, wrapped := range t.wrapped {
		wrapped.Close()
	}
	delete(t.mux.tasks, t)
}

var _ ports.Dashboard = (*Dashboard)(nil)
var _ ports.Task = (*task)(nil)
