package ports

import "ekam.build/ekam/internal/core/domain"

// Dashboard is the external sink for per-action progress reporting. The
// core never renders anything itself; it only calls BeginTask and drives
// the returned Task through its state transitions.
//
//go:generate mockgen -source=dashboard.go -destination=mocks/mock_dashboard.go -package=mocks
type Dashboard interface {
	// BeginTask registers a new unit of visible work. verb and noun mirror
	// the Action's own verb/label pair (e.g. "compile", "foo.cpp"); silent
	// tasks are recorded but suppressed from default rendering.
	BeginTask(verb, noun string, silent bool) Task
}

// Task is a single row of Dashboard state, owned exclusively by the
// ActionRecord that created it. Dropping it (Close) ends its lifetime;
// no further calls are valid afterward.
type Task interface {
	// SetState transitions the task's presentation state.
	SetState(state domain.TaskState)
	// AddOutput appends a line of the action's own log output.
	AddOutput(text string)
	// Close ends the task's lifetime. It is safe to call more than once.
	Close()
}
