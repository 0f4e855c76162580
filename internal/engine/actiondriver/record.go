package actiondriver

import (
	"fmt"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
	"ekam.build/ekam/internal/engine/promise"
)

// provisionEntry is one buffered BuildContext.Provide call, held until the
// action's start promise settles so a failing action never leaves a partial
// provision visible to the rest of the build.
type provisionEntry struct {
	file ports.File
	tags []domain.Tag
}

// Record is a single (Factory, triggering tag, triggering file) binding
// tracked through the Action Driver's lifecycle. Its id doubles as the Tag
// Index owner key for every provision it commits.
type Record struct {
	id string

	factory     action.Factory
	act         action.Action
	triggerTag  domain.Tag
	triggerFile ports.File

	status domain.ActionStatus
	task   ports.Task

	promise *promise.Promise[action.Void]
	deps    []func() // unsubscribe funcs for tag and file watches

	span ports.Span

	pending []provisionEntry

	// explicit records whether Passed/Failed was called directly on the
	// context rather than left to the start promise settling, so a later
	// promise settlement is ignored instead of double-reporting.
	explicit bool
}

func newRecord(id string, f action.Factory, act action.Action, tag domain.Tag, file ports.File) *Record {
	return &Record{
		id:          id,
		factory:     f,
		act:         act,
		triggerTag:  tag,
		triggerFile: file,
		status:      domain.ActionPending,
	}
}

func (r *Record) label() string {
	if r.triggerFile != nil {
		return r.triggerFile.CanonicalName()
	}
	return r.triggerTag.String()
}

func (r *Record) clearDeps() {
	for _, unsub := range r.deps {
		unsub()
	}
	r.deps = nil
}

func recordID(seq uint64, file ports.File, verb string) string {
	name := verb
	if file != nil {
		name = file.CanonicalName()
	}
	return fmt.Sprintf("%s#%d", name, seq)
}
