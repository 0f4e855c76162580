package mux_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ekam.build/ekam/internal/adapters/dashboard/mux"
	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
)

type recordingDashboard struct {
	begun []string
	tasks []*recordingTask
}

func (d *recordingDashboard) BeginTask(verb, noun string, silent bool) ports.Task {
	d.begun = append(d.begun, verb+" "+noun)
	task := &recordingTask{}
	d.tasks = append(d.tasks, task)
	return task
}

type recordingTask struct {
	states []domain.TaskState
	output []string
	closed bool
}

func (t *recordingTask) SetState(state domain.TaskState) { t.states = append(t.states, state) }
func (t *recordingTask) AddOutput(text string)            { t.output = append(t.output, text) }
func (t *recordingTask) Close()                           { t.closed = true }

func TestMux_ForwardsToAllWrapped(t *testing.T) {
	a, b := &recordingDashboard{}, &recordingDashboard{}
	m := mux.New(a, b)

	task := m.BeginTask("compile", "main.c", false)
	task.SetState(domain.TaskRunning)
	task.AddOutput("hi")
	task.Close()

	for _, d := range []*recordingDashboard{a, b} {
		assert.Equal(t, []string{"compile main.c"}, d.begun)
		assert.Equal(t, []domain.TaskState{domain.TaskRunning}, d.tasks[0].states)
		assert.Equal(t, []string{"hi"}, d.tasks[0].output)
		assert.True(t, d.tasks[0].closed)
	}
}

func TestMux_AttachOpensWrappedTaskForInFlightWork(t *testing.T) {
	m := mux.New()
	task := m.BeginTask("compile", "main.c", false)
	task.SetState(domain.TaskRunning)

	late := &recordingDashboard{}
	m.Attach(late)

	assert.Equal(t, []string{"compile main.c"}, late.begun)
	assert.Equal(t, []domain.TaskState{domain.TaskRunning}, late.tasks[0].states)
}
