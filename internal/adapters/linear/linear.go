// Package linear implements a non-interactive Dashboard that writes one
// line per task transition, suitable for CI logs and other non-TTY
// destinations where a redrawing TUI would just produce garbage.
package linear

import (
	"fmt"
	"io"
	"sync"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
)

// Dashboard writes task progress as plain text lines to w.
type Dashboard struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a Dashboard writing to w.
func New(w io.Writer) *Dashboard {
	return &Dashboard{w: w}
}

func (d *Dashboard) BeginTask(verb, noun string, silent bool) ports.Task {
	label := verb
	if noun != "" {
		label = verb + " " + noun
	}
	if !silent {
		d.println(fmt.Sprintf("> %s", label))
	}
	return &task{dashboard: d, label: label, silent: silent}
}

func (d *Dashboard) println(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintln(d.w, line)
}

type task struct {
	dashboard *Dashboard
	label     string
	silent    bool
	closed    bool
}

func (t *task) SetState(state domain.TaskState) {
	if t.silent {
		return
	}
	switch state {
	case domain.TaskPassed:
		t.dashboard.println(fmt.Sprintf("  %s: passed", t.label))
	case domain.TaskFailed:
		t.dashboard.println(fmt.Sprintf("  %s: FAILED", t.label))
	case domain.TaskBlocked:
		t.dashboard.println(fmt.Sprintf("  %s: blocked", t.label))
	}
}

func (t *task) AddOutput(text string) {
	if t.silent {
		return
	}
	t.dashboard.println(fmt.Sprintf("  %s| %s", t.label, text))
}

func (t *task) Close() {
	t.closed = true
}

var _ ports.Dashboard = (*Dashboard)(nil)
var _ ports.Task = (*task)(nil)
