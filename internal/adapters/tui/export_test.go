package tui

import "ekam.build/ekam/internal/core/domain"

// MaxOffset exposes maxOffset to external tests.
func (v *Vterm) MaxOffset() int {
	return v.maxOffset()
}

// State exposes a taskRow's state to external tests.
func (t *taskRow) State() domain.TaskState { return t.state }

// Term exposes a taskRow's Vterm to external tests.
func (t *taskRow) Term() *Vterm { return t.term }
