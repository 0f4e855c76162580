package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"ekam.build/ekam/internal/core/domain"
)

// taskRow is one visible unit of work: a single BeginTask call. Ekam
// actions can run more than once over their lifetime (a dependency
// changes, the record is requeued), and each run gets its own row rather
// than reusing a prior one by name.
type taskRow struct {
	id     int
	verb   string
	noun   string
	silent bool
	state  domain.TaskState
	term   *Vterm
}

func (t *taskRow) label() string {
	if t.noun == "" {
		return t.verb
	}
	return t.verb + " " + t.noun
}

type msgTaskBegin struct {
	id     int
	verb   string
	noun   string
	silent bool
}

type msgTaskState struct {
	id    int
	state domain.TaskState
}

type msgTaskOutput struct {
	id   int
	text string
}

type msgTaskClose struct{ id int }

// Model is the bubbletea model backing the TUI dashboard: a flat,
// insertion-ordered list of task rows plus a log pane following whichever
// row is currently selected.
type Model struct {
	Tasks  []*taskRow
	TaskMap map[int]*taskRow

	AutoScroll  bool
	SelectedIdx int
	ListOffset  int

	width  int
	height int

	ListHeight int
	LogWidth   int
	LogHeight  int
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case msgTaskBegin:
		row := &taskRow{id: msg.id, verb: msg.verb, noun: msg.noun, silent: msg.silent, state: domain.TaskPending, term: NewVterm()}
		m.TaskMap[msg.id] = row
		m.Tasks = append(m.Tasks, row)
		if m.AutoScroll {
			m.SelectedIdx = len(m.Tasks) - 1
		}
		return m, nil

	case msgTaskState:
		if row, ok := m.TaskMap[msg.id]; ok {
			row.state = msg.state
		}
		return m, nil

	case msgTaskOutput:
		if row, ok := m.TaskMap[msg.id]; ok {
			_, _ = row.term.Write([]byte(msg.text + "\n"))
		}
		return m, nil

	case msgTaskClose:
		return m, nil
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.AutoScroll = false
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
		}
	case "down", "j":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
		}
		m.AutoScroll = m.SelectedIdx == len(m.Tasks)-1
	case "G":
		m.AutoScroll = true
		m.SelectedIdx = len(m.Tasks) - 1
	default:
		if len(m.Tasks) > 0 {
			_, cmd := m.Tasks[m.SelectedIdx].term.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) layout() {
	m.ListHeight = m.height - 2
	if m.ListHeight < 1 {
		m.ListHeight = 1
	}
	m.LogHeight = m.height - 2
	if m.LogHeight < 1 {
		m.LogHeight = 1
	}
	m.LogWidth = m.width - m.taskListWidth() - 1
	if m.LogWidth < 1 {
		m.LogWidth = 1
	}
	for _, row := range m.Tasks {
		row.term.SetWidth(m.LogWidth)
		row.term.SetHeight(m.LogHeight)
	}
}

func (m Model) taskListWidth() int {
	width := 24
	for _, row := range m.Tasks {
		if l := len(row.label()); l+4 > width {
			width = l + 4
		}
	}
	if width > m.width/3 {
		width = m.width / 3
	}
	return width
}

func (m Model) selected() *taskRow {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Tasks) {
		return nil
	}
	return m.Tasks[m.SelectedIdx]
}

func (m Model) failures() int {
	n := 0
	for _, row := range m.Tasks {
		if row.state == domain.TaskFailed {
			n++
		}
	}
	return n
}
