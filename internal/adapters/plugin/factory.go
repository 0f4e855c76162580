// Package plugin implements the Action Driver's subprocess plugin
// protocol: a line-oriented conversation over a subprocess's stdin/stdout
// that lets an external program discover inputs, declare outputs, and
// provide tags without linking against the engine itself.
package plugin

import (
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
	"ekam.build/ekam/internal/engine/action"
)

// RootFactory is offered every file tagged "filetype:ekam-rule" — an
// executable rule script discovered by the walk. It always runs the rule
// itself with no triggering file argument, under the verb "learn".
type RootFactory struct{}

// NewRootFactory creates the Driver Root's sole statically registered
// plugin factory.
func NewRootFactory() *RootFactory { return &RootFactory{} }

func (*RootFactory) TriggerTags() []domain.Tag {
	return []domain.Tag{domain.NewTag("filetype:ekam-rule")}
}

func (*RootFactory) TryMakeAction(tag domain.Tag, file ports.File) (action.Action, bool) {
	return newAction(file, "learn", false, nil), true
}

func (*RootFactory) Priority() domain.Priority { return domain.PriorityRules }

// DerivedFactory is what a running plugin registers for itself via the
// "trigger" command: future files matching any of triggers are offered to
// the same executable, this time with the matching file as its argument.
type DerivedFactory struct {
	executable ports.File
	verb       string
	silent     bool
	triggers   []domain.Tag
	priority   domain.Priority
}

func newDerivedFactory(executable ports.File, verb string, silent bool, triggers []domain.Tag) *DerivedFactory {
	return &DerivedFactory{executable: executable, verb: verb, silent: silent, triggers: triggers, priority: domain.PriorityEverythingElse}
}

func (f *DerivedFactory) TriggerTags() []domain.Tag { return f.triggers }

func (f *DerivedFactory) TryMakeAction(tag domain.Tag, file ports.File) (action.Action, bool) {
	return newAction(f.executable, f.verb, f.silent, file), true
}

func (f *DerivedFactory) Priority() domain.Priority { return f.priority }
