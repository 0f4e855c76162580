package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"ekam.build/ekam/internal/core/domain"
)

// BeginTaskMsg builds the tea.Msg that adds a new task row with id.
func BeginTaskMsg(id int, verb, noun string, silent bool) tea.Msg {
	return msgTaskBegin{id: id, verb: verb, noun: noun, silent: silent}
}

// SetStateMsg builds the tea.Msg that transitions an existing row's state.
func SetStateMsg(id int, state domain.TaskState) tea.Msg {
	return msgTaskState{id: id, state: state}
}

// AddOutputMsg builds the tea.Msg that appends a line to a row's log.
func AddOutputMsg(id int, text string) tea.Msg {
	return msgTaskOutput{id: id, text: text}
}

// CloseTaskMsg builds the tea.Msg sent when a row's owning Task is closed.
func CloseTaskMsg(id int) tea.Msg {
	return msgTaskClose{id: id}
}
