package tui

// NewModel creates an empty Model ready to be driven by a Dashboard.
func NewModel() Model {
	return Model{
		TaskMap:    make(map[int]*taskRow),
		AutoScroll: true,
	}
}
