// Package text implements the interactive terminal Dashboard: a
// bubbletea program, built from the internal/adapters/tui widget layer,
// that renders every registered task as a row with its own scrollable
// log pane.
package text

import (
	"io"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"ekam.build/ekam/internal/adapters/tui"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
)

// Dashboard drives a bubbletea program from ports.Dashboard calls.
type Dashboard struct {
	program *tea.Program
	nextID  atomic.Int64
	done    chan struct{}
	runErr  error
}

// New starts a bubbletea program rendering to w and returns a Dashboard
// that feeds it. Call Wait to block until the user quits the program.
func New(w io.Writer) *Dashboard {
	out := tui.NewOutput(w)
	program := tea.NewProgram(tui.NewModel(), tea.WithOutput(out))
	d := &Dashboard{program: program, done: make(chan struct{})}
	go func() {
		defer close(d.done)
		_, d.runErr = program.Run()
	}()
	return d
}

// Wait blocks until the underlying program exits, returning any error it
// surfaced.
func (d *Dashboard) Wait() error {
	<-d.done
	return d.runErr
}

// Quit asks the underlying program to exit.
func (d *Dashboard) Quit() { d.program.Quit() }

func (d *Dashboard) BeginTask(verb, noun string, silent bool) ports.Task {
	id := int(d.nextID.Add(1))
	d.program.Send(tui.BeginTaskMsg(id, verb, noun, silent))
	return &task{id: id, dashboard: d}
}

type task struct {
	id        int
	dashboard *Dashboard
}

func (t *task) SetState(state domain.TaskState) {
	t.dashboard.program.Send(tui.SetStateMsg(t.id, state))
}

func (t *task) AddOutput(text string) {
	t.dashboard.program.Send(tui.AddOutputMsg(t.id, text))
}

func (t *task) Close() {
	t.dashboard.program.Send(tui.CloseTaskMsg(t.id))
}

var _ ports.Dashboard = (*Dashboard)(nil)
var _ ports.Task = (*task)(nil)
