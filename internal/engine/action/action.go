// Package action defines the contracts the Action Driver and Driver Root
// schedule against: Action, ActionFactory, and the BuildContext capability
// an Action uses to talk back to the driver. None of these types know how
// the driver actually tracks dependencies or commits provisions — that
// lives in internal/engine/actiondriver — so a concrete action factory
// (internal/adapters/plugin, for instance) only ever imports this package.
package action

import (
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/eventloop"
	"ekam.build/ekam/internal/engine/promise"
)

// Void is the unit value Promise[Void] settles with for actions that only
// signal completion, mirroring the spec's Promise<void>.
type Void = struct{}

// Context is the capability object an Action uses to discover inputs,
// declare outputs, and report its own outcome. It is exclusively owned by
// the ActionRecord that starts the action and must not be retained past
// the action's Start call.
type Context interface {
	// FindProvider looks up the file currently providing tag. The lookup
	// is always recorded as a dependency of the calling action, even when
	// it returns ok == false.
	FindProvider(tag domain.Tag) (file ports.File, ok bool)
	// FindInput resolves path as a file outside the tag system — typically
	// a file the action already knows the name of. Also recorded as a
	// dependency.
	FindInput(path string) (file ports.File, ok bool)
	// NewOutput creates a handle for a file the action will write, rooted
	// in the driver's derived-output tree.
	NewOutput(path string) (ports.File, error)
	// Provide declares that file satisfies every tag in tags. Provisions
	// are buffered until the action's start promise fulfills, then
	// committed to the Tag Index atomically.
	Provide(file ports.File, tags []domain.Tag)
	// Install copies file into one of the driver root's well-known
	// install directories under name.
	Install(file ports.File, location domain.InstallLocation, name string) error
	// Log appends a line of the action's own output, visible on its
	// Dashboard task.
	Log(text string)
	// AddActionType registers a new factory, derived from this action's
	// output, with the Driver Root.
	AddActionType(factory Factory)
	// Passed explicitly marks the action successful, independent of its
	// start promise settling.
	Passed()
	// Failed explicitly marks the action failed, independent of its start
	// promise settling.
	Failed()
}

// Action is a unit of work offered a triggering (tag, file) pair by a
// Factory. It interacts with the rest of the system only through the
// Context handed to Start.
type Action interface {
	// Verb is the action's short label (e.g. "compile"), shown on its
	// Dashboard task alongside the triggering file's name.
	Verb() string
	// Silent actions still get a Dashboard task but are suppressed from
	// default rendering.
	Silent() bool
	// Start begins the action's work. The returned promise fulfills when
	// the action completes successfully, or carries an error otherwise.
	Start(loop *eventloop.Loop, ctx Context) *promise.Promise[Void]
}

// Factory enumerates a fixed set of trigger tags and, given a (tag, file)
// pair matching one of them, either returns an Action or refuses.
type Factory interface {
	// TriggerTags lists the tags this factory wants to be offered files
	// for.
	TriggerTags() []domain.Tag
	// TryMakeAction is offered a file that currently provides tag. It
	// returns ok == false to decline.
	TryMakeAction(tag domain.Tag, file ports.File) (a Action, ok bool)
	// Priority orders this factory's actions in the initial queue.
	Priority() domain.Priority
}
