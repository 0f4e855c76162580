package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ekam.build/ekam/internal/core/domain"
)

func (m Model) View() string {
	if len(m.Tasks) == 0 {
		return titleStyle.Render("ekam") + "\n" + "waiting for work...\n"
	}

	title := titleStyle
	if m.failures() > 0 {
		title = failureTitleStyle
	}
	header := title.Render(fmt.Sprintf("ekam  %d tasks", len(m.Tasks)))

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.taskList(), m.logPane())
	return header + "\n" + body
}

func (m Model) taskList() string {
	var b strings.Builder
	width := m.taskListWidth()

	first := m.ListOffset
	last := first + m.ListHeight
	if last > len(m.Tasks) {
		last = len(m.Tasks)
	}

	for i := first; i < last; i++ {
		b.WriteString(m.renderTaskRow(m.Tasks[i], i == m.SelectedIdx, width))
		b.WriteByte('\n')
	}

	return listStyle.Width(width).Height(m.ListHeight).Render(b.String())
}

func (m Model) renderTaskRow(row *taskRow, selected bool, width int) string {
	icon := getTaskIcon(row.state)
	label := row.label()
	if len(label)+2 > width {
		label = label[:width-2]
	}
	line := icon + " " + label

	style := getTaskStyle(row.state)
	if selected {
		style = selectedStyle
	}
	return style.Width(width).Render(line)
}

func getTaskIcon(state domain.TaskState) string {
	switch state {
	case domain.TaskPending:
		return "o"
	case domain.TaskRunning:
		return "*"
	case domain.TaskBlocked:
		return "?"
	case domain.TaskDone, domain.TaskPassed:
		return "+"
	case domain.TaskFailed:
		return "x"
	default:
		return " "
	}
}

func getTaskStyle(state domain.TaskState) lipgloss.Style {
	switch state {
	case domain.TaskPending:
		return taskPendingStyle
	case domain.TaskRunning, domain.TaskBlocked:
		return taskRunningStyle
	case domain.TaskDone, domain.TaskPassed:
		return taskDoneStyle
	case domain.TaskFailed:
		return taskErrorStyle
	default:
		return taskCachedStyle
	}
}

func (m Model) logPane() string {
	row := m.selected()
	if row == nil {
		return logStyle.Width(m.LogWidth).Height(m.LogHeight).Render("")
	}
	row.term.SetWidth(m.LogWidth)
	row.term.SetHeight(m.LogHeight)
	return logStyle.Width(m.LogWidth).Height(m.LogHeight).Render(row.term.View())
}
